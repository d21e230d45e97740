package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kerbaras/companion/pkg/services"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show member settings",
	Long:  "Display the local member settings and the remote sync state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		controller, err := openController()
		if err != nil {
			return err
		}
		defer controller.Close()

		settings, state, err := controller.Settings()
		if err != nil {
			return err
		}

		sync := "disabled"
		if state.Enabled {
			sync = "enabled"
		}
		fmt.Printf("Sync:       %s\n", sync)
		fmt.Printf("Last sync:  %s\n", state.Updated.Format("2006-01-02 15:04:05 MST"))

		if settings == nil {
			fmt.Println("No local settings.")
			return nil
		}

		fmt.Printf("Updated:    %s\n\n", settings.Updated.Format("2006-01-02 15:04:05 MST"))
		keys := make([]string, 0, len(settings.Values))
		for k := range settings.Values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v, _ := json.Marshal(settings.Values[k])
			fmt.Printf("  %s = %s\n", k, v)
		}
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set key=value...",
	Short: "Change local settings and sync them",
	Long:  "Merge key=value pairs into the local settings. Values are parsed as JSON when possible.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		updates, err := parseAssignments(args)
		if err != nil {
			return err
		}

		controller, err := openController()
		if err != nil {
			return err
		}
		defer controller.Close()

		settings, _, err := controller.Settings()
		if err != nil {
			return err
		}
		values := map[string]any{}
		if settings != nil {
			for k, v := range settings.Values {
				values[k] = v
			}
		}
		for k, v := range updates {
			values[k] = v
		}

		outcome, err := controller.SettingsSync().Update(cmd.Context(), values)
		if err != nil {
			return err
		}
		printOutcome(outcome)
		return nil
	},
}

func syncCommand(use, short string, run func(*services.SettingsSync, *cobra.Command) (services.Outcome, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, err := openController()
			if err != nil {
				return err
			}
			defer controller.Close()

			outcome, err := run(controller.SettingsSync(), cmd)
			if err != nil {
				return err
			}
			printOutcome(outcome)
			return nil
		},
	}
}

func toggleCommand(use, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, err := openController()
			if err != nil {
				return err
			}
			defer controller.Close()

			if err := controller.SettingsSync().SetEnabled(enabled); err != nil {
				return err
			}
			fmt.Printf("Remote sync %sd\n", use)
			return nil
		},
	}
}

func init() {
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(syncCommand("pull", "Download remote settings when newer",
		func(s *services.SettingsSync, cmd *cobra.Command) (services.Outcome, error) { return s.Pull(cmd.Context()) }))
	settingsCmd.AddCommand(syncCommand("push", "Upload local settings",
		func(s *services.SettingsSync, cmd *cobra.Command) (services.Outcome, error) { return s.Push(cmd.Context()) }))
	settingsCmd.AddCommand(syncCommand("sync", "Push or pull, whichever side is newer",
		func(s *services.SettingsSync, cmd *cobra.Command) (services.Outcome, error) { return s.Sync(cmd.Context()) }))
	settingsCmd.AddCommand(toggleCommand("enable", "Turn remote sync on", true))
	settingsCmd.AddCommand(toggleCommand("disable", "Turn remote sync off", false))
}

// parseAssignments turns key=value arguments into a settings map.
func parseAssignments(args []string) (map[string]any, error) {
	values := make(map[string]any, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected key=value", arg)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		values[key] = v
	}
	return values, nil
}

func printOutcome(outcome services.Outcome) {
	switch outcome {
	case services.OutcomeDownloaded:
		fmt.Println("⬇️  Remote settings downloaded")
	case services.OutcomeUploaded:
		fmt.Println("⬆️  Local settings uploaded")
	case services.OutcomeCurrent:
		fmt.Println("✅ Settings are up to date")
	case services.OutcomeNoMembership:
		fmt.Println("No remote settings for this membership")
	case services.OutcomeReset:
		fmt.Println("Remote settings not found; sync state reset")
	case services.OutcomeLocalOnly:
		fmt.Println("Saved locally (remote sync disabled)")
	default:
		fmt.Println(outcome)
	}
}
