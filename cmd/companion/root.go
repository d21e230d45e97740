package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kerbaras/companion/pkg/app"
	"github.com/kerbaras/companion/pkg/config"
	"github.com/kerbaras/companion/pkg/logging"
	"github.com/kerbaras/companion/pkg/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	envFiles []string
)

var rootCmd = &cobra.Command{
	Use:   "companion",
	Short: "A terminal companion for the game manifest",
	Long:  "Download, cache and browse the game manifest with a TUI and CLI",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Launch TUI by default
		controller, err := openController()
		if err != nil {
			return err
		}
		defer controller.Close()

		return app.NewApp(controller).Run()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("language", "l", "", "Manifest language (e.g., en, de, es-mx)")
	flags.Bool("offline", false, "Start without network access")
	flags.String("db", "", "Path of the local manifest database")
	flags.StringSliceVar(&envFiles, "env-file", nil, "Dotenv files to load (default .env)")

	rootCmd.AddCommand(manifestCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(clearCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration, applies flag overrides and builds the logger.
func setup(cmd *cobra.Command) error {
	c, err := config.Load(envFiles...)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("language") {
		c.Language, _ = flags.GetString("language")
	}
	if flags.Changed("offline") {
		c.Offline, _ = flags.GetBool("offline")
	}
	if flags.Changed("db") {
		c.DBPath, _ = flags.GetString("db")
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logFile := c.LogFile
	if logFile == "" && cmd == cmd.Root() {
		// The TUI owns the terminal
		logFile = filepath.Join(filepath.Dir(c.DBPath), "companion.log")
	}
	l, err := logging.New(c.LogLevel, logFile)
	if err != nil {
		return err
	}

	cfg = c
	logger = l
	return nil
}

func openController() (*services.Controller, error) {
	return services.NewController(cfg, logger)
}
