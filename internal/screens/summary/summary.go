package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/fluentz/internal/emotion"
	"github.com/abhisek/fluentz/internal/practice"
	"github.com/abhisek/fluentz/internal/router"
	"github.com/abhisek/fluentz/internal/screen"
	"github.com/abhisek/fluentz/internal/session"
	"github.com/abhisek/fluentz/internal/ui/components"
	"github.com/abhisek/fluentz/internal/ui/layout"
	"github.com/abhisek/fluentz/internal/ui/theme"
)

// SummaryScreen displays the result of a finished session.
type SummaryScreen struct {
	record  session.Record
	summary *session.Summary
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.Decorated = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(rec session.Record, sum *session.Summary) *SummaryScreen {
	return &SummaryScreen{record: rec, summary: sum}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) Chrome() layout.Chrome {
	return layout.Chrome{Hints: []layout.Hint{
		{Key: "Enter", Action: "Continue"},
		{Key: "Esc", Action: "Home"},
	}}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}

	var b strings.Builder
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	b.WriteString(center.Render(theme.Title.Render("Session complete!")))
	b.WriteString("\n\n")

	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	meta := fmt.Sprintf("Duration: %d:%02d    Policy: %s", mins, secs, s.record.Policy.Label())
	if s.record.Participant != "" {
		meta += "    Participant: " + s.record.Participant
	}
	b.WriteString(center.Foreground(theme.TextDim).Render(meta))
	b.WriteString("\n\n")

	statsLine := fmt.Sprintf("Questions: %d        Correct: %d        Skipped: %d        Accuracy: %.0f%%",
		sum.TotalQuestions, sum.TotalCorrect, sum.Skipped, sum.Accuracy*100)
	b.WriteString(center.Foreground(theme.Text).Render(statsLine))
	b.WriteString("\n\n")

	var levels []string
	for _, d := range practice.AllDifficulties {
		t, ok := sum.ByDifficulty[d]
		if !ok {
			continue
		}
		line := fmt.Sprintf("%-8s %d/%d correct", d, t.Correct, t.Attempted)
		levels = append(levels, lipgloss.NewStyle().Foreground(theme.DifficultyColor(string(d))).Render(line))
	}
	var moods []string
	for _, e := range emotion.All {
		moods = append(moods, lipgloss.NewStyle().
			Foreground(theme.EmotionColor(string(e))).
			Render(fmt.Sprintf("%s %d", strings.ToLower(string(e)), sum.Emotions[e])))
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, components.Card(components.ContentWidth(width),
		components.Section{Heading: "Levels", Body: strings.Join(levels, "\n")},
		components.Section{Heading: "Mood", Body: strings.Join(moods, "    ")},
	)))
	b.WriteString("\n\n")

	b.WriteString(center.Foreground(theme.TextDim).Render("Path: " + renderPath(sum.Path)))

	return b.String()
}

// renderPath shows the difficulty of each question as colored initials.
func renderPath(path []practice.Difficulty) string {
	parts := make([]string, 0, len(path))
	for _, d := range path {
		initial := strings.ToUpper(string(d)[:1])
		parts = append(parts, lipgloss.NewStyle().
			Foreground(theme.DifficultyColor(string(d))).
			Render(initial))
	}
	return strings.Join(parts, " ")
}
