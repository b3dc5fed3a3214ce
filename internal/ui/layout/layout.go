package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/fluentz/internal/ui/theme"
)

// Smallest terminal the practice screens fit in.
const (
	MinWidth  = 80
	MinHeight = 24
)

// Hint is one key binding shown in the footer.
type Hint struct {
	Key    string
	Action string
}

// Chrome is what is drawn around a screen's body.
type Chrome struct {
	Title  string
	Status string
	Hints  []Hint
}

// TooSmall reports whether the terminal is below MinWidth x MinHeight.
func TooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// Page draws the header and footer of c and fills the space between them
// with body, which is given the exact size it may use. A terminal that is
// too small gets a resize notice instead.
func Page(c Chrome, width, height int, body func(width, height int) string) string {
	if TooSmall(width, height) {
		return resizeNotice(width, height)
	}
	top := header(c.Title, c.Status, width)
	bottom := footer(c.Hints, width)
	bodyHeight := max(height-lipgloss.Height(top)-lipgloss.Height(bottom), 0)
	middle := lipgloss.NewStyle().
		Width(width).
		Height(bodyHeight).
		Render(body(width, bodyHeight))
	return lipgloss.JoinVertical(lipgloss.Left, top, middle, bottom)
}

func bar() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

func header(title, status string, width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  Fluentz")
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(status)
	// The border and its padding take four columns.
	room := max(width-4-lipgloss.Width(brand)-lipgloss.Width(right), 0)
	middle := lipgloss.PlaceHorizontal(room, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Render(title))
	return bar().Width(width).Render(brand + middle + right)
}

func footer(hints []Hint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	action := lipgloss.NewStyle().Foreground(theme.TextDim)
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = key.Render(h.Key) + " " + action.Render(h.Action)
	}
	return bar().Width(width).Render("  " + strings.Join(parts, "   "))
}

func resizeNotice(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf("Please make the terminal at least %d x %d.\nIt is %d x %d now.",
			MinWidth, MinHeight, width, height))
}
