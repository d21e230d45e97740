package screens

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/companion/pkg/app/components"
	"github.com/kerbaras/companion/pkg/app/styles"
	"github.com/kerbaras/companion/pkg/manifest"
)

const searchLimit = 20

// InspectScreen searches inventory items by name or hash.
type InspectScreen struct {
	manifest  *manifest.Manifest
	input     textinput.Model
	results   *components.ItemList
	searching bool
	searched  bool
	width     int
	height    int
}

func NewInspectScreen(m *manifest.Manifest) *InspectScreen {
	ti := textinput.New()
	ti.Placeholder = "Item name or hash..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 50

	return &InspectScreen{
		manifest: m,
		input:    ti,
		results:  components.NewItemList(),
	}
}

func (s *InspectScreen) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InspectScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.results.Width = msg.Width - 2
		s.results.Height = msg.Height - 12

	case tea.KeyMsg:
		if s.searching {
			return s, nil
		}

		switch msg.String() {
		case "enter":
			if s.input.Focused() {
				query := s.input.Value()
				if query != "" {
					s.searching = true
					return s, s.performSearch(query)
				}
			} else if selected := s.results.Selected(); selected != nil {
				hash := selected.Key
				return s, func() tea.Msg {
					return SwitchScreenMsg{Screen: "details", Data: hash}
				}
			}

		case "esc":
			// Switch focus between input and results
			if s.input.Focused() {
				s.input.Blur()
			} else {
				s.input.Focus()
				cmd = textinput.Blink
			}
			return s, cmd

		case "up", "k":
			if !s.input.Focused() {
				s.results.Prev()
				return s, nil
			}

		case "down", "j":
			if !s.input.Focused() {
				s.results.Next()
				return s, nil
			}
		}

	case searchResultMsg:
		s.searching = false
		s.searched = true
		s.results.SetItems(msg.results)
		s.results.SelectedIndex = 0
		if len(msg.results) > 0 {
			s.input.Blur()
		}
		return s, nil
	}

	if s.input.Focused() {
		s.input, cmd = s.input.Update(msg)
	}

	return s, cmd
}

func (s *InspectScreen) View() string {
	header := styles.TitleStyle.Render("Inspect Items")

	inputStyle := styles.InputStyle
	if s.input.Focused() {
		inputStyle = styles.FocusedInputStyle
	}
	inputView := inputStyle.Render(s.input.View())

	var resultsView string
	switch {
	case s.searching:
		resultsView = styles.StatusActive.Render("Searching...")
	case len(s.results.Items) > 0:
		resultsView = styles.SubtitleStyle.Render(fmt.Sprintf("Found %d items:", len(s.results.Items))) +
			"\n\n" + s.results.View()
	case s.searched:
		resultsView = styles.MutedStyle.Render("No items found")
	}

	help := styles.HelpStyle.Render(
		"enter: search/open • esc: switch focus • ↑/k ↓/j: navigate • tab: switch view • q: quit",
	)

	return fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s", header, inputView, resultsView, help)
}

// Messages
type searchResultMsg struct {
	results []manifest.ItemDefinition
}

// Commands
func (s *InspectScreen) performSearch(query string) tea.Cmd {
	return func() tea.Msg {
		return searchResultMsg{results: s.manifest.SearchItems(query, searchLimit)}
	}
}
