package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/fluentz/internal/ui/theme"
)

// MenuItem is one choice on a Menu. Key, when set, activates the item
// directly. Hint is shown under the menu while the item is selected.
type MenuItem struct {
	Label    string
	Key      string
	Hint     string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list of buttons. Disabled items are drawn dimmed and
// never receive the selection.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu selects the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items}
	m.Selected = m.nextEnabled(-1, 1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// nextEnabled walks from i in direction dir and returns the first enabled
// index, or -1 when there is none.
func (m Menu) nextEnabled(i, dir int) int {
	for i += dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			return i
		}
	}
	return -1
}

func (m Menu) move(from, dir int) Menu {
	if i := m.nextEnabled(from, dir); i >= 0 {
		m.Selected = i
	}
	return m
}

func (m Menu) activate(i int) tea.Cmd {
	if i < 0 || i >= len(m.Items) {
		return nil
	}
	item := m.Items[i]
	if item.Disabled || item.Action == nil {
		return nil
	}
	return item.Action()
}

// Update moves the selection on up/down/home/end, runs the selected item on
// enter or space, and runs any item whose shortcut key was pressed.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch k := key.String(); k {
	case "up", "k":
		return m.move(m.Selected, -1), nil
	case "down", "j", "tab":
		return m.move(m.Selected, 1), nil
	case "home":
		return m.move(-1, 1), nil
	case "end":
		return m.move(len(m.Items), -1), nil
	case "enter", "space":
		return m, m.activate(m.Selected)
	default:
		for i, item := range m.Items {
			if item.Key != "" && item.Key == k && !item.Disabled {
				m.Selected = i
				return m, m.activate(i)
			}
		}
	}
	return m, nil
}

// View renders bordered buttons of buttonWidth, or plain lines when
// compact, centered in width. The selected item's hint follows.
func (m Menu) View(width, buttonWidth int, compact bool) string {
	rows := make([]string, 0, len(m.Items)+1)
	for i, item := range m.Items {
		if compact {
			rows = append(rows, menuLine(item, i == m.Selected))
		} else {
			rows = append(rows, menuButton(item, i == m.Selected, buttonWidth))
		}
	}
	if m.Selected >= 0 && m.Selected < len(m.Items) {
		if hint := m.Items[m.Selected].Hint; hint != "" {
			rows = append(rows, theme.Hint.Render(hint))
		}
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(strings.Join(rows, "\n"))
}

func menuLabel(item MenuItem) string {
	if item.Key == "" {
		return item.Label
	}
	return item.Label + " [" + strings.ToUpper(item.Key) + "]"
}

func menuButton(item MenuItem, selected bool, width int) string {
	style := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	switch {
	case item.Disabled:
		return style.Foreground(theme.TextDim).BorderForeground(theme.Border).Render(item.Label)
	case selected:
		return style.Bold(true).
			Foreground(theme.BgDark).
			Background(theme.ArcadeYellow).
			BorderForeground(theme.ArcadeYellow).
			Render("▸ " + menuLabel(item))
	default:
		return style.Foreground(theme.Text).BorderForeground(theme.Border).Render(menuLabel(item))
	}
}

func menuLine(item MenuItem, selected bool) string {
	switch {
	case item.Disabled:
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("   " + item.Label)
	case selected:
		return lipgloss.NewStyle().
			Foreground(theme.BgDark).
			Background(theme.ArcadeYellow).
			Bold(true).
			Render(" ▸ " + menuLabel(item) + " ")
	default:
		return lipgloss.NewStyle().Foreground(theme.Text).Render("   " + menuLabel(item))
	}
}
