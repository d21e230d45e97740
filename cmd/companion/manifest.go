package cmd

import (
	"fmt"

	"github.com/kerbaras/companion/pkg/services"
	"github.com/spf13/cobra"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Acquire the manifest",
	Long:  "Check the cached manifest against the remote version, download it when needed and print a summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		controller, err := openController()
		if err != nil {
			return err
		}
		defer controller.Close()

		// Listen for progress
		done := make(chan struct{})
		go func() {
			defer close(done)
			last := services.StateIdle
			for status := range controller.Bootstrap().Updates() {
				switch {
				case status.State == services.StateFetching && status.Table != "":
					fmt.Printf("  %d/%d %s\n", status.Downloaded, status.Total, status.Table)
				case status.State != last:
					fmt.Printf("• %s\n", status.State)
				}
				last = status.State
				if status.State == services.StateReady || status.State == services.StateFailed {
					return
				}
			}
		}()

		m, err := controller.Manifest(cmd.Context())
		// Buffered updates are still drained after close
		controller.Bootstrap().Close()
		<-done
		if err != nil {
			return describeError(err)
		}

		fmt.Printf("\n✅ Manifest ready\n")
		fmt.Printf("Version:  %s\n", m.Version())
		fmt.Printf("Language: %s\n", m.Language())
		fmt.Printf("Tables:   %d\n", len(m.Tables()))
		if settings := m.Settings(); settings != nil {
			fmt.Printf("Systems:  %d\n", len(settings.Systems))
		}
		return nil
	},
}

// describeError prefixes err with the user-facing message for its kind.
func describeError(err error) error {
	kind := services.KindOf(err)
	if kind == services.KindNone {
		return err
	}
	if code := services.CodeOf(err); code != "" {
		return fmt.Errorf("%s [%s %s]: %w", services.Message(kind), kind, code, err)
	}
	return fmt.Errorf("%s [%s]: %w", services.Message(kind), kind, err)
}
