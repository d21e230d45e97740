package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read [hash...]",
	Short: "Export lore entries to an EPUB",
	Long:  "Collect lore entries by lore or item hash and write them to an EPUB book",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		output, _ := cmd.Flags().GetString("output")

		controller, err := openController()
		if err != nil {
			return err
		}
		defer controller.Close()

		path, err := controller.ExportLore(cmd.Context(), title, output, args)
		if err != nil {
			return describeError(err)
		}

		fmt.Printf("📖 EPUB created: %s\n", path)
		return nil
	},
}

func init() {
	readCmd.Flags().StringP("title", "t", "", "Book title (defaults to the first entry)")
	readCmd.Flags().StringP("output", "o", ".", "Output directory")
}
