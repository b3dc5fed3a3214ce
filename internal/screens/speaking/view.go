package speaking

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/fluentz/internal/session"
	"github.com/abhisek/fluentz/internal/ui/components"
	"github.com/abhisek/fluentz/internal/ui/theme"
)

func centered(width int) lipgloss.Style {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
}

// renderQuestion renders the current item with the answer input.
func (s *SpeakingScreen) renderQuestion(width int) string {
	if s.served == nil {
		return renderLoading(width)
	}
	it := s.served.Item

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.DifficultyColor(string(it.Difficulty))).
		Bold(true).
		Render("  Level: " + string(it.Difficulty))
	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Question %d of %d", s.served.Number, session.MaxQuestions))

	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.track().View()))
	b.WriteString("\n\n")

	if s.served.FallbackHint != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Banner.Render(s.served.FallbackHint)))
		b.WriteString("\n\n")
	}

	b.WriteString(centered(width).Foreground(theme.TextDim).Render("Say it in English:"))
	b.WriteString("\n\n")
	prompt := lipgloss.NewStyle().
		Width(min(width-8, 70)).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render(it.Prompt)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, prompt))
	b.WriteString("\n\n")

	if s.mode == modeChecking {
		b.WriteString(centered(width).Render(theme.Hint.Render("Checking your answer...")))
	} else {
		b.WriteString(centered(width).Render("Answer: " + s.input.View()))
	}

	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(centered(width).Foreground(theme.Accent).Render(s.notice))
	}

	return b.String()
}

// renderFeedback renders the result of the last question.
func (s *SpeakingScreen) renderFeedback(width int) string {
	out := s.outcome
	if out == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\n")

	switch {
	case out.Skipped:
		b.WriteString(centered(width).Foreground(theme.TextDim).Bold(true).Render("Skipped"))
	case out.Correct:
		b.WriteString(centered(width).Render(theme.Correct.Render("Correct!")))
	default:
		b.WriteString(centered(width).Render(theme.Incorrect.Render("Not quite")))
	}
	b.WriteString("\n")

	if !out.Correct && s.served != nil {
		b.WriteString(centered(width).Foreground(theme.TextDim).
			Render(fmt.Sprintf("Expected: %s", s.served.Item.ExpectedAnswer)))
		b.WriteString("\n")
	}
	if out.Answer != "" {
		b.WriteString(centered(width).Foreground(theme.TextDim).
			Render(fmt.Sprintf("You said: %s", out.Answer)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	mood := lipgloss.NewStyle().
		Foreground(theme.EmotionColor(string(out.Emotion))).
		Bold(true).
		Render(strings.ToLower(string(out.Emotion)))
	b.WriteString(centered(width).Render(fmt.Sprintf("Mood: %s (%s)", mood, out.EmotionSource)))
	b.WriteString("\n")

	if st, err := s.ctrl.State(); err == nil && st.Phase != session.PhaseFinished {
		next := lipgloss.NewStyle().
			Foreground(theme.DifficultyColor(string(st.CurrentDifficulty))).
			Render(string(st.CurrentDifficulty))
		b.WriteString(centered(width).Render("Next level: " + next))
		b.WriteString("\n")
	}
	if s.advised {
		b.WriteString(centered(width).Foreground(theme.Secondary).Italic(true).
			Render("Your coach picked the next phrase."))
		b.WriteString("\n")
	}

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(centered(width).Foreground(theme.Accent).Render(s.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	cont := "Press any key to continue..."
	if s.ctrl.Phase() == session.PhaseFinished {
		cont = "Press any key to see your summary..."
	}
	b.WriteString(centered(width).Foreground(theme.TextDim).Render(cont))

	return b.String()
}

// renderQuitConfirm renders the leave confirmation dialog.
func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(centered(width).Foreground(theme.Text).Bold(true).Render("Leave this session?"))
	b.WriteString("\n")
	b.WriteString(centered(width).Foreground(theme.TextDim).Render("Your progress is kept. Resume it from the home screen."))
	b.WriteString("\n\n")
	b.WriteString(centered(width).Foreground(theme.Success).Render("[Y] Yes, leave"))
	b.WriteString("\n")
	b.WriteString(centered(width).Foreground(theme.Primary).Render("[N] No, keep going"))
	return b.String()
}

// track marks every finalized question and the one on screen.
func (s *SpeakingScreen) track() components.QuestionTrack {
	var marks []components.Mark
	if st, err := s.ctrl.State(); err == nil {
		for _, o := range st.Outcomes {
			switch {
			case o.Skipped:
				marks = append(marks, components.MarkSkipped)
			case o.Correct:
				marks = append(marks, components.MarkCorrect)
			default:
				marks = append(marks, components.MarkIncorrect)
			}
		}
	}
	if s.served != nil && s.served.Number > len(marks) {
		marks = append(marks, components.MarkCurrent)
	}
	return components.NewQuestionTrack(session.MaxQuestions, marks...)
}

func renderLoading(width int) string {
	return centered(width).
		Foreground(theme.TextDim).
		Render("\n\n\n  Finding your next phrase...")
}

func renderError(width int, errMsg string) string {
	return centered(width).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  %s\n\n  Press any key to go back.", errMsg))
}
