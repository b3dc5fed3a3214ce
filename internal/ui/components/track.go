package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/fluentz/internal/ui/theme"
)

// Mark is the state of one question slot on a QuestionTrack.
type Mark int

const (
	MarkPending Mark = iota
	MarkCurrent
	MarkCorrect
	MarkIncorrect
	MarkSkipped
)

func (m Mark) glyph() string {
	switch m {
	case MarkCurrent:
		return "◆"
	case MarkCorrect:
		return "●"
	case MarkIncorrect:
		return "✕"
	case MarkSkipped:
		return "○"
	default:
		return "·"
	}
}

func (m Mark) style() lipgloss.Style {
	s := lipgloss.NewStyle()
	switch m {
	case MarkCurrent:
		return s.Foreground(theme.Primary).Bold(true)
	case MarkCorrect:
		return s.Foreground(theme.Success)
	case MarkIncorrect:
		return s.Foreground(theme.Error)
	case MarkSkipped:
		return s.Foreground(theme.Warning)
	default:
		return s.Foreground(theme.Border)
	}
}

// QuestionTrack shows every question of a session as one pip, so the
// learner sees both how far they are and how each answer went.
type QuestionTrack struct {
	Marks []Mark
}

// NewQuestionTrack builds a track of total pending slots with the given
// marks applied from the first slot on. Extra marks are dropped.
func NewQuestionTrack(total int, marks ...Mark) QuestionTrack {
	t := QuestionTrack{Marks: make([]Mark, total)}
	copy(t.Marks, marks)
	return t
}

// Finalized counts slots that hold a result.
func (t QuestionTrack) Finalized() int {
	n := 0
	for _, m := range t.Marks {
		if m != MarkPending && m != MarkCurrent {
			n++
		}
	}
	return n
}

// View renders the pips followed by a done/total counter.
func (t QuestionTrack) View() string {
	pips := make([]string, len(t.Marks))
	for i, m := range t.Marks {
		pips[i] = m.style().Render(m.glyph())
	}
	count := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("  %d/%d", t.Finalized(), len(t.Marks)))
	return strings.Join(pips, " ") + count
}
