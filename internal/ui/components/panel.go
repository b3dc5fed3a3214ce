package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/fluentz/internal/ui/theme"
)

const (
	minContentWidth = 20
	maxContentWidth = 64
	// frameInset is the outer border plus the frame's inner padding.
	frameInset = 6
)

// ContentWidth is the width every section inside a Frame is drawn at, so
// stacked boxes line up.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-frameInset, minContentWidth), maxContentWidth)
}

// Frame draws a double border around the whole screen area and centers
// content inside it.
func Frame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Section is one headed block of a Card.
type Section struct {
	Heading string
	Body    string
}

// Card stacks sections in a rounded box cw wide, a blank line between
// each. Sections with an empty body are left out.
func Card(cw int, sections ...Section) string {
	heading := lipgloss.NewStyle().Foreground(theme.TextDim)
	var blocks []string
	for _, s := range sections {
		if s.Body == "" {
			continue
		}
		block := s.Body
		if s.Heading != "" {
			block = heading.Render(s.Heading) + "\n" + block
		}
		blocks = append(blocks, block)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(1, 2).
		Render(strings.Join(blocks, "\n\n"))
}
