package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/fluentz/internal/screens/speaking"
	"github.com/abhisek/fluentz/internal/ui/components"
	"github.com/abhisek/fluentz/internal/ui/theme"
)

// renderTitle centers the wordmark; compact layouts get the one-line form.
func renderTitle(cw int, compact bool) string {
	width := cw
	if compact {
		width = 0
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(components.Wordmark(width, " · ", theme.ArcadeYellow))
}

// renderStatsBar renders the dashboard stats in a bordered box matching content width.
func renderStatsBar(sessions int, accuracy float64, practices int, counted bool, cw int, compact bool) string {
	sessionStyle := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)
	accuracyStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	practiceStyle := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	pct := int(accuracy*100 + 0.5)
	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s %s",
			sessionStyle.Render(fmt.Sprintf("★%d", sessions)),
			accuracyStyle.Render(fmt.Sprintf("◆%d%%", pct)),
			practiceText(practices, counted, true, practiceStyle, dimStyle),
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s",
			sessionStyle.Render(fmt.Sprintf("★ %d SESSIONS", sessions)),
			accuracyStyle.Render(fmt.Sprintf("◆ %d%% ACCURACY", pct)),
			practiceText(practices, counted, false, practiceStyle, dimStyle),
		)
	}

	// Wrap in a double-border box at the same content width
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw - 2). // account for border chars
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

func practiceText(n int, counted, compact bool, active, dim lipgloss.Style) string {
	if !counted {
		if compact {
			return dim.Render("⚡?")
		}
		return dim.Render("⚡ REMOTE DECK")
	}
	if compact {
		return active.Render(fmt.Sprintf("⚡%d", n))
	}
	return active.Render(fmt.Sprintf("⚡ %d PHRASES", n))
}

// buttonWidth fits the longest label, its shortcut and the selection marker.
const buttonWidth = 30

// renderNoPracticesBanner renders a warning when the catalog is empty.
func renderNoPracticesBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ " + speaking.NoPracticesText + "\nRun `fluentz seed` to load the starter deck.")
}

// renderMascotBox renders the mascot centered in a box matching content width.
func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}

// renderNotice renders a dim one-line message, such as a failed start.
func renderNotice(text string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(cw).
		Align(lipgloss.Center).
		Render(text)
}
