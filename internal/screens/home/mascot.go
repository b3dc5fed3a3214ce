package home

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/fluentz/internal/ui/theme"
)

// MascotVariant picks the mascot's face and what it says.
type MascotVariant int

const (
	MascotIdle MascotVariant = iota
	MascotCelebrating
	MascotAlert
)

type mascot struct {
	face  string
	line  string
	color color.Color
}

var mascots = map[MascotVariant]mascot{
	MascotIdle: {
		face: ` ╭───╮
 │• •│
 │ o │
 ╰┬─┬╯`,
		line:  "Let's talk!",
		color: theme.Secondary,
	},
	MascotCelebrating: {
		face: ` ╭───╮
 │^ ^│
 │ ▽ │
\╰┬─┬╯/`,
		line:  "You're on a roll!",
		color: theme.ArcadeYellow,
	},
	MascotAlert: {
		face: ` ╭───╮
 │• •│
 │ ~ │
 ╰┬─┬╯`,
		line:  "No phrases to practice yet",
		color: theme.Accent,
	},
}

// RenderMascot draws the mascot with its speech bubble to the right.
func RenderMascot(v MascotVariant) string {
	m, ok := mascots[v]
	if !ok {
		m = mascots[MascotIdle]
	}
	face := lipgloss.NewStyle().Foreground(m.color).Render(m.face)
	bubble := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.color).
		Foreground(theme.Text).
		Padding(0, 1).
		Render(m.line)
	return lipgloss.JoinHorizontal(lipgloss.Center, face, " ", bubble)
}
