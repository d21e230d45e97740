package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/companion/pkg/app/styles"
	"github.com/kerbaras/companion/pkg/manifest"
)

// ItemList is a selectable list of inventory item cards.
type ItemList struct {
	Items         []manifest.ItemDefinition
	SelectedIndex int
	Width         int
	Height        int
}

func NewItemList() *ItemList {
	return &ItemList{
		Items:         []manifest.ItemDefinition{},
		SelectedIndex: 0,
		Width:         80,
		Height:        20,
	}
}

func (l *ItemList) SetItems(items []manifest.ItemDefinition) {
	l.Items = items
	if l.SelectedIndex >= len(items) && len(items) > 0 {
		l.SelectedIndex = len(items) - 1
	}
	if len(items) == 0 {
		l.SelectedIndex = 0
	}
}

func (l *ItemList) Next() {
	if len(l.Items) == 0 {
		return
	}
	l.SelectedIndex++
	if l.SelectedIndex >= len(l.Items) {
		l.SelectedIndex = 0
	}
}

func (l *ItemList) Prev() {
	if len(l.Items) == 0 {
		return
	}
	l.SelectedIndex--
	if l.SelectedIndex < 0 {
		l.SelectedIndex = len(l.Items) - 1
	}
}

func (l *ItemList) Selected() *manifest.ItemDefinition {
	if len(l.Items) == 0 || l.SelectedIndex >= len(l.Items) {
		return nil
	}
	return &l.Items[l.SelectedIndex]
}

func (l *ItemList) View() string {
	if len(l.Items) == 0 {
		emptyMsg := styles.MutedStyle.Render("No items")
		return lipgloss.Place(l.Width, l.Height, lipgloss.Center, lipgloss.Center, emptyMsg)
	}

	var b strings.Builder

	for i, item := range l.Items {
		cardStyle := styles.CardStyle
		if i == l.SelectedIndex {
			cardStyle = styles.ActiveCardStyle
		}

		title := styles.TitleStyle.Render(item.DisplayProperties.Name)

		kind := item.ItemTypeDisplayName
		if item.Inventory.TierTypeName != "" {
			kind = strings.TrimSpace(item.Inventory.TierTypeName + " " + kind)
		}

		flavor := item.FlavorText
		if len(flavor) > 80 {
			flavor = flavor[:77] + "..."
		}

		meta := fmt.Sprintf("Hash: %s", item.Key)
		if item.LoreHash != "" {
			meta += " • has lore"
		}

		cardContent := lipgloss.JoinVertical(
			lipgloss.Left,
			title,
			styles.SubtitleStyle.Render(kind),
			styles.TextStyle.Render(flavor),
			styles.MutedStyle.Render(meta),
		)

		card := cardStyle.Width(l.Width - 4).Render(cardContent)
		b.WriteString(card)
		b.WriteString("\n")
	}

	return b.String()
}
