package screens

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/companion/pkg/app/styles"
	"github.com/kerbaras/companion/pkg/data"
	"github.com/kerbaras/companion/pkg/manifest"
)

// TablesScreen lists the cached manifest tables.
type TablesScreen struct {
	backend  Backend
	manifest *manifest.Manifest
	table    table.Model
	infos    []data.TableInfo
	width    int
	height   int
	err      error
}

func NewTablesScreen(backend Backend, m *manifest.Manifest) *TablesScreen {
	columns := []table.Column{
		{Title: "Table", Width: 40},
		{Title: "Definitions", Width: 12},
		{Title: "Loaded", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(styles.Foreground).
		Background(styles.Primary).
		Bold(false)
	t.SetStyles(s)

	return &TablesScreen{
		backend:  backend,
		manifest: m,
		table:    t,
	}
}

func (s *TablesScreen) Init() tea.Cmd {
	return s.loadTables
}

func (s *TablesScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		if msg.Height > 12 {
			s.table.SetHeight(msg.Height - 12)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return s, s.loadTables
		}

	case tablesLoadedMsg:
		s.err = msg.err
		s.infos = msg.infos
		s.table.SetRows(s.rows())
		return s, nil
	}

	s.table, cmd = s.table.Update(msg)
	return s, cmd
}

func (s *TablesScreen) View() string {
	header := styles.TitleStyle.Render("Manifest")

	summary := styles.MutedStyle.Render(fmt.Sprintf("Version: %s • Language: %s • Tables: %d",
		s.manifest.Version(), s.manifest.Language(), len(s.infos)))

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		errorMsg += "\n\n"
	}

	help := styles.HelpStyle.Render(
		"↑/k ↓/j: navigate • r: refresh • tab: switch view • q: quit",
	)

	return fmt.Sprintf("%s\n%s\n\n%s%s\n%s", header, summary, errorMsg, s.table.View(), help)
}

// rows renders one row per cached table. Loaded reports whether the
// merged manifest serves the table.
func (s *TablesScreen) rows() []table.Row {
	rows := make([]table.Row, len(s.infos))
	for i, info := range s.infos {
		loaded := "no"
		if s.manifest.Has(manifest.TableName(info.Name)) {
			loaded = "yes"
		}
		rows[i] = table.Row{info.Name, strconv.Itoa(info.Size), loaded}
	}
	return rows
}

// Messages
type tablesLoadedMsg struct {
	infos []data.TableInfo
	err   error
}

// Commands
func (s *TablesScreen) loadTables() tea.Msg {
	infos, err := s.backend.Tables()
	return tablesLoadedMsg{infos: infos, err: err}
}
