package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/intervu/internal/ui/theme"
)

// MenuItem is one selectable line.
type MenuItem struct {
	Label    string
	Value    string
	Disabled bool
}

// Menu is a vertical single-choice list. Enter reports the selection
// through a MenuSelectedMsg tagged with the menu's ID.
type Menu struct {
	ID       string
	Items    []MenuItem
	Selected int
}

// MenuSelectedMsg is sent when enter is pressed on an item.
type MenuSelectedMsg struct {
	MenuID string
	Item   MenuItem
	Index  int
}

// NewMenu creates a menu with the first enabled item selected.
func NewMenu(id string, items []MenuItem) Menu {
	selected := 0
	for i, item := range items {
		if !item.Disabled {
			selected = i
			break
		}
	}
	return Menu{
		ID:       id,
		Items:    items,
		Selected: selected,
	}
}

// Select moves the cursor to the item with the given value. It reports
// whether one was found.
func (m *Menu) Select(value string) bool {
	for i, item := range m.Items {
		if !item.Disabled && strings.EqualFold(item.Value, value) {
			m.Selected = i
			return true
		}
	}
	return false
}

// Current returns the item under the cursor.
func (m Menu) Current() (MenuItem, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Items) {
		return MenuItem{}, false
	}
	return m.Items[m.Selected], true
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		for i := m.Selected - 1; i >= 0; i-- {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "down", "j":
		for i := m.Selected + 1; i < len(m.Items); i++ {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "enter":
		item, ok := m.Current()
		if ok && !item.Disabled {
			sel := MenuSelectedMsg{MenuID: m.ID, Item: item, Index: m.Selected}
			return m, func() tea.Msg { return sel }
		}
	}

	return m, nil
}

// View renders the menu. focused dims the cursor when false.
func (m Menu) View(focused bool) string {
	var b strings.Builder
	for i, item := range m.Items {
		switch {
		case i == m.Selected && focused:
			b.WriteString(theme.Selected.Render("  ▸ " + item.Label))
		case i == m.Selected:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Render("  • " + item.Label))
		case item.Disabled:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("    " + item.Label))
		default:
			b.WriteString(theme.Unselected.Render("    " + item.Label))
		}
		b.WriteString("\n")
	}
	return b.String()
}
