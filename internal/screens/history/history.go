package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/fluentz/internal/router"
	"github.com/abhisek/fluentz/internal/screen"
	"github.com/abhisek/fluentz/internal/session"
	"github.com/abhisek/fluentz/internal/store"
	"github.com/abhisek/fluentz/internal/ui/layout"
	"github.com/abhisek/fluentz/internal/ui/theme"
)

// Sessions reads archived sessions. *store.SessionRepo implements it.
type Sessions interface {
	List(ctx context.Context, opts store.QueryOpts) ([]store.SessionSummary, error)
	Get(ctx context.Context, id string) (*session.Record, error)
}

type historyLoadedMsg struct {
	Sessions []store.SessionSummary
	Err      error
}

type detailLoadedMsg struct {
	Index  int
	Record *session.Record
	Err    error
}

// HistoryScreen displays past sessions and their per-question outcomes.
type HistoryScreen struct {
	repo     Sessions
	sessions []store.SessionSummary
	details  map[int]*session.Record
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.Decorated = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(repo Sessions) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		details:  make(map[int]*session.Record),
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		sessions, err := repo.List(context.Background(), store.QueryOpts{Limit: 50})
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) Chrome() layout.Chrome {
	return layout.Chrome{Hints: []layout.Hint{
		{Key: "Enter", Action: "Details"},
		{Key: "↑↓", Action: "Navigate"},
		{Key: "Esc", Action: "Back"},
	}}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case detailLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.details[msg.Index] = msg.Record
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			return s, s.toggle(s.selected)
		}
	}
	return s, nil
}

// toggle expands or collapses a session, loading its outcomes on first use.
func (s *HistoryScreen) toggle(i int) tea.Cmd {
	if i >= len(s.sessions) {
		return nil
	}
	s.expanded[i] = !s.expanded[i]
	if !s.expanded[i] || s.details[i] != nil {
		return nil
	}
	repo := s.repo
	id := s.sessions[i].ID
	return func() tea.Msg {
		rec, err := repo.Get(context.Background(), id)
		return detailLoadedMsg{Index: i, Record: rec, Err: err}
	}
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Start practicing!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		dateStr := sess.StartedAt.Format("Jan 02, 2006")
		dur := sess.FinishedAt.Sub(sess.StartedAt)
		durationStr := fmt.Sprintf("%d:%02d", int(dur.Minutes()), int(dur.Seconds())%60)

		var accuracy float64
		if sess.TotalQuestions > 0 {
			accuracy = float64(sess.CorrectAnswers) / float64(sess.TotalQuestions) * 100
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s#%d  %s  %s  %-8s  %d/%d correct  %.0f%%",
			prefix, sess.Sequence, dateStr, durationStr, sess.Policy.Label(),
			sess.CorrectAnswers, sess.TotalQuestions, accuracy)
		if sess.Participant != "" {
			line += "  " + sess.Participant
		}

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(renderOutcomes(width, s.details[i]))
		}
	}

	return b.String()
}

func renderOutcomes(width int, rec *session.Record) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)
	if rec == nil {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render("    Loading...")) + "\n"
	}
	if len(rec.Outcomes) == 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render("    No questions answered")) + "\n"
	}

	var b strings.Builder
	for _, o := range rec.Outcomes {
		mark := "✗"
		switch {
		case o.Skipped:
			mark = "-"
		case o.Correct:
			mark = "✓"
		}
		line := fmt.Sprintf("    %2d. %s %-6s %-8s %s", o.Index, mark, o.Difficulty,
			strings.ToLower(string(o.Emotion)), o.ItemID)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.EmotionColor(string(o.Emotion))).Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}
