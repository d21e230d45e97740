package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/companion/pkg/app/styles"
	"github.com/kerbaras/companion/pkg/manifest"
)

// DetailsScreen shows one item and its lore entry.
type DetailsScreen struct {
	backend  Backend
	manifest *manifest.Manifest
	hash     string
	item     *manifest.ItemDefinition
	lore     *manifest.LoreDefinition
	exported string
	width    int
	height   int
	err      error
}

func NewDetailsScreen(backend Backend, m *manifest.Manifest, hash string) *DetailsScreen {
	return &DetailsScreen{
		backend:  backend,
		manifest: m,
		hash:     hash,
	}
}

func (s *DetailsScreen) Init() tea.Cmd {
	return s.loadDetails
}

func (s *DetailsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "e":
			if s.lore != nil {
				return s, s.exportLore()
			}
		case "esc", "backspace":
			return s, func() tea.Msg {
				return SwitchScreenMsg{Screen: "inspect", Data: nil}
			}
		}

	case detailsLoadedMsg:
		s.item = msg.item
		s.lore = msg.lore
		s.err = msg.err

	case loreExportedMsg:
		s.err = msg.err
		s.exported = msg.path
	}

	return s, nil
}

func (s *DetailsScreen) View() string {
	if s.item == nil && s.err == nil {
		return "Loading..."
	}

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		errorMsg += "\n\n"
	}

	if s.item == nil {
		return errorMsg + styles.HelpStyle.Render("esc: back • q: quit")
	}

	header := styles.TitleStyle.Render(s.item.DisplayProperties.Name)

	var exported string
	if s.exported != "" {
		exported = styles.StatusReady.Render("Exported to " + s.exported)
		exported += "\n\n"
	}

	help := "esc: back • q: quit"
	if s.lore != nil {
		help = "e: export lore • " + help
	}

	return fmt.Sprintf("%s\n\n%s%s%s\n%s\n%s",
		header,
		errorMsg,
		exported,
		s.renderItemInfo(),
		s.renderLore(),
		styles.HelpStyle.Render(help),
	)
}

func (s *DetailsScreen) renderItemInfo() string {
	kind := strings.TrimSpace(s.item.Inventory.TierTypeName + " " + s.item.ItemTypeDisplayName)

	lines := []string{
		styles.SubtitleStyle.Render(kind),
	}
	if s.item.FlavorText != "" {
		lines = append(lines, "", styles.TextStyle.Render(s.item.FlavorText))
	}
	if s.item.DisplayProperties.Description != "" {
		lines = append(lines, "", styles.TextStyle.Render(s.item.DisplayProperties.Description))
	}
	lines = append(lines, "", styles.MutedStyle.Render(fmt.Sprintf("Hash: %s", s.item.Key)))

	width := s.width - 4
	if width <= 0 {
		width = 76
	}
	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (s *DetailsScreen) renderLore() string {
	if s.lore == nil {
		return styles.MutedStyle.Render("No lore for this item")
	}

	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render(s.lore.DisplayProperties.Name))
	b.WriteString("\n")
	if s.lore.Subtitle != "" {
		b.WriteString(styles.MutedStyle.Render(s.lore.Subtitle))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	body := s.lore.DisplayProperties.Description
	if len(body) > 600 {
		body = body[:597] + "..."
	}
	b.WriteString(styles.TextStyle.Render(body))
	b.WriteString("\n")

	return b.String()
}

// Messages
type detailsLoadedMsg struct {
	item *manifest.ItemDefinition
	lore *manifest.LoreDefinition
	err  error
}

type loreExportedMsg struct {
	path string
	err  error
}

// Commands
func (s *DetailsScreen) loadDetails() tea.Msg {
	item, err := s.manifest.Item(s.hash)
	if err != nil {
		return detailsLoadedMsg{err: err}
	}
	if item.LoreHash == "" {
		return detailsLoadedMsg{item: &item}
	}

	lore, err := s.manifest.Lore(string(item.LoreHash))
	if errors.Is(err, manifest.ErrDefinitionNotFound) {
		return detailsLoadedMsg{item: &item}
	}
	if err != nil {
		return detailsLoadedMsg{item: &item, err: err}
	}
	return detailsLoadedMsg{item: &item, lore: &lore}
}

func (s *DetailsScreen) exportLore() tea.Cmd {
	hash := s.item.Key
	return func() tea.Msg {
		path, err := s.backend.ExportLore(context.Background(), "", "", []string{hash})
		return loreExportedMsg{path: path, err: err}
	}
}
