package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop the cached manifest",
	Long:  "Remove the cached manifest tables; the next run downloads them again",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		controller, err := openController()
		if err != nil {
			return err
		}
		defer controller.Close()

		if err := controller.ClearCache(); err != nil {
			return err
		}
		fmt.Println("🗑️  Manifest cache cleared")
		return nil
	},
}
