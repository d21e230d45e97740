package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [query]",
	Short: "Search inventory items",
	Long:  "Search the manifest for inventory items by name or hash and display results in a table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		limit, _ := cmd.Flags().GetInt("limit")

		controller, err := openController()
		if err != nil {
			return err
		}
		defer controller.Close()

		m, err := controller.Manifest(cmd.Context())
		if err != nil {
			return describeError(err)
		}

		results := m.SearchItems(query, limit)
		if len(results) == 0 {
			fmt.Println("No items found.")
			return nil
		}

		var (
			purple = lipgloss.Color("99")

			headerStyle = lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
			cellStyle   = lipgloss.NewStyle().Padding(0, 1)
		)

		t := table.New().
			Border(lipgloss.HiddenBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(purple)).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headerStyle
				default:
					return cellStyle
				}
			}).
			Headers("#", "Name", "Type", "Hash", "Lore")

		for i, item := range results {
			lore := ""
			if item.LoreHash != "" {
				lore = string(item.LoreHash)
			}
			t.Row(
				fmt.Sprintf("%d", i+1),
				truncateString(item.DisplayProperties.Name, 40),
				truncateString(item.ItemTypeDisplayName, 24),
				item.Key,
				lore,
			)
		}

		fmt.Println(t)
		return nil
	},
}

func init() {
	inspectCmd.Flags().IntP("limit", "n", 20, "Maximum number of results")
}
