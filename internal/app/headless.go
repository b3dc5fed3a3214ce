package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/abhisek/fluentz/internal/difficulty"
	"github.com/abhisek/fluentz/internal/emotion"
	"github.com/abhisek/fluentz/internal/practice"
	"github.com/abhisek/fluentz/internal/session"
	"github.com/abhisek/fluentz/internal/transcript"
)

// Line commands understood by the headless runner.
const (
	CmdSkip = "/skip"
	CmdQuit = "/quit"
)

// ErrQuit is returned by RunHeadless when the user leaves an unfinished
// session.
var ErrQuit = errors.New("session left unfinished")

// Headless runs a session over a line-oriented transcript source, printing
// prompts and feedback to Out. It is the non-interactive counterpart of
// the TUI and drives the controller synchronously.
type Headless struct {
	Controller *session.Controller
	Source     transcript.Source
	Out        io.Writer

	// Save is called after every transition. Optional.
	Save func(ctx context.Context, c *session.Controller) error
}

// Run starts or resumes a session under policy and plays it to the end.
// It returns the finished session's summary. End of input and /quit leave
// the session unfinished and return ErrQuit.
func (h *Headless) Run(ctx context.Context, policy difficulty.Policy) (*session.Summary, error) {
	c := h.Controller
	resumed, err := c.Start(policy)
	if err != nil {
		return nil, err
	}
	if resumed {
		st, _ := c.State()
		fmt.Fprintf(h.Out, "Resuming %s session at question %d.\n", policy.Label(), st.QuestionIndex+1)
	}
	fmt.Fprintf(h.Out, "Type your answer, %s to skip, %s to leave. Lines starting with %s load a recording.\n\n",
		CmdSkip, CmdQuit, transcript.FilePrefix)

	for c.Phase() != session.PhaseFinished {
		item, err := h.present(ctx)
		if err != nil {
			return nil, err
		}

		res, err := transcript.Capture(ctx, h.Source)
		switch {
		case errors.Is(err, transcript.ErrEndOfInput):
			h.save(ctx)
			return nil, ErrQuit
		case err != nil && ctx.Err() != nil:
			h.save(ctx)
			return nil, ctx.Err()
		case err != nil:
			// A bad recording is not fatal; ask again.
			fmt.Fprintf(h.Out, "  Could not use recording: %v\n", err)
			continue
		}

		var out *session.Outcome
		switch strings.TrimSpace(res.Text) {
		case CmdQuit:
			h.save(ctx)
			return nil, ErrQuit
		case CmdSkip:
			out, err = c.Skip(ctx)
		default:
			out, err = c.SubmitSignal(ctx, res.Text, res.Signal())
		}
		if out == nil {
			return nil, err
		}
		h.feedback(item, out)
		if err != nil {
			fmt.Fprintf(h.Out, "  Session could not be saved: %v\n", err)
		}
		if c.SuggestNext(ctx) {
			fmt.Fprintln(h.Out, "  Your coach picked the next phrase.")
		}
		h.save(ctx)
	}

	rec := c.Record()
	sum := session.BuildSummary(rec)
	fmt.Fprintln(h.Out)
	WriteSummary(h.Out, rec, sum)
	return sum, nil
}

// present fetches the next item, or reuses the one awaiting an answer after
// a resume, and prints it.
func (h *Headless) present(ctx context.Context) (practice.Item, error) {
	c := h.Controller
	var item practice.Item
	number := 0
	hint := ""

	st, err := c.State()
	if err != nil {
		return item, err
	}
	if st.Phase == session.PhaseAwaitingAnswer && st.Current != nil {
		item, number = *st.Current, st.QuestionIndex+1
	} else {
		served, err := c.RequestNextItem(ctx)
		if err != nil {
			return item, err
		}
		item, number, hint = served.Item, served.Number, served.FallbackHint
		h.save(ctx)
	}

	if hint != "" {
		fmt.Fprintf(h.Out, "(%s)\n", hint)
	}
	fmt.Fprintf(h.Out, "Q%d/%d [%s] %s\n> ", number, session.MaxQuestions, item.Difficulty, item.Prompt)
	return item, nil
}

func (h *Headless) feedback(item practice.Item, out *session.Outcome) {
	switch {
	case out.Skipped:
		fmt.Fprintf(h.Out, "  Skipped. Expected: %s\n", item.ExpectedAnswer)
	case out.Correct:
		fmt.Fprintln(h.Out, "  Correct!")
	default:
		fmt.Fprintf(h.Out, "  Not quite. Expected: %s\n", item.ExpectedAnswer)
	}
	fmt.Fprintf(h.Out, "  Mood: %s (%s)\n\n", strings.ToLower(string(out.Emotion)), out.EmotionSource)
}

func (h *Headless) save(ctx context.Context) {
	if h.Save == nil {
		return
	}
	if err := h.Save(ctx, h.Controller); err != nil {
		fmt.Fprintf(h.Out, "  Progress could not be saved: %v\n", err)
	}
}

// WriteSummary prints a plain-text session summary.
func WriteSummary(w io.Writer, rec session.Record, sum *session.Summary) {
	fmt.Fprintln(w, "Session complete!")
	if rec.Participant != "" {
		fmt.Fprintf(w, "  Participant: %s\n", rec.Participant)
	}
	fmt.Fprintf(w, "  Policy:      %s\n", rec.Policy.Label())
	fmt.Fprintf(w, "  Duration:    %s\n", sum.Duration.Round(1e9))
	fmt.Fprintf(w, "  Correct:     %d/%d (%.0f%%)\n", sum.TotalCorrect, sum.TotalQuestions, sum.Accuracy*100)
	fmt.Fprintf(w, "  Skipped:     %d\n", sum.Skipped)
	for _, d := range practice.AllDifficulties {
		if t, ok := sum.ByDifficulty[d]; ok {
			fmt.Fprintf(w, "  %-12s %d/%d\n", string(d)+":", t.Correct, t.Attempted)
		}
	}
	var moods []string
	for _, e := range emotion.All {
		moods = append(moods, fmt.Sprintf("%s %d", strings.ToLower(string(e)), sum.Emotions[e]))
	}
	fmt.Fprintf(w, "  Mood:        %s\n", strings.Join(moods, ", "))
	path := make([]string, len(sum.Path))
	for i, d := range sum.Path {
		path[i] = string(d)
	}
	fmt.Fprintf(w, "  Path:        %s\n", strings.Join(path, " → "))
}
