package cmd

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List cached manifest tables",
	Long:  "Display the manifest tables stored in the local database in a formatted table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		controller, err := openController()
		if err != nil {
			return err
		}
		defer controller.Close()

		infos, err := controller.Tables()
		if err != nil {
			return err
		}

		if len(infos) == 0 {
			fmt.Println("📦 No cached manifest. Use 'companion manifest' to download it.")
			return nil
		}

		columns := []table.Column{
			{Title: "Table", Width: 44},
			{Title: "Definitions", Width: 12},
			{Title: "Version", Width: 40},
		}

		rows := []table.Row{}
		for _, info := range infos {
			rows = append(rows, table.Row{
				truncateString(info.Name, 42),
				fmt.Sprintf("%d", info.Size),
				truncateString(info.Version, 38),
			})
		}

		t := table.New(
			table.WithColumns(columns),
			table.WithRows(rows),
			table.WithFocused(false),
			table.WithHeight(len(rows)),
		)

		s := table.DefaultStyles()
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(false)
		t.SetStyles(s)

		fmt.Printf("\n📦 Manifest (%d tables)\n\n", len(infos))
		fmt.Println(t.View())
		return nil
	},
}
