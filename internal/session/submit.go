package session

import (
	"context"
	"fmt"

	"github.com/abhisek/fluentz/internal/answer"
	"github.com/abhisek/fluentz/internal/difficulty"
	"github.com/abhisek/fluentz/internal/emotion"
)

// SubmitAnswer finalizes the current question with raw as the answer and
// label as an optional external emotion label ("" when none). It is valid
// only in AWAITING_ANSWER.
func (c *Controller) SubmitAnswer(ctx context.Context, raw, label string) (*Outcome, error) {
	t, err := c.BeginAnswer(raw)
	if err != nil {
		return nil, err
	}
	return c.ApplyAnswer(ctx, t, label, label != "")
}

// SubmitSignal is SubmitAnswer with the label looked up from the emotion
// service for sig. The lookup is bounded and its failure is not an error.
func (c *Controller) SubmitSignal(ctx context.Context, raw string, sig emotion.Signal) (*Outcome, error) {
	t, err := c.BeginAnswer(raw)
	if err != nil {
		return nil, err
	}
	label, ok := c.DetectLabel(ctx, t, sig)
	return c.ApplyAnswer(ctx, t, label, ok)
}

// BeginAnswer records raw as the pending answer and moves the session to
// EVALUATING. Further submissions are rejected until ApplyAnswer or Skip.
func (c *Controller) BeginAnswer(raw string) (Ticket, error) {
	if c.state == nil {
		return Ticket{}, ErrNoSession
	}
	if c.state.Phase != PhaseAwaitingAnswer {
		return Ticket{}, c.reject("submit answer")
	}
	c.state.Phase = PhaseEvaluating
	c.pendingAnswer = raw
	return c.issue(), nil
}

// DetectLabel asks the emotion service for a label. Only adaptive tickets
// consult the service. DetectLabel does not modify the controller.
func (c *Controller) DetectLabel(ctx context.Context, t Ticket, sig emotion.Signal) (string, bool) {
	if t.Policy != difficulty.Adaptive || c.opts.Signals == nil {
		return "", false
	}
	return emotion.Resolve(ctx, c.opts.Signals, sig, c.opts.EmotionTimeout)
}

// ApplyAnswer finalizes the pending answer. labelOK reports whether label
// was successfully obtained. A result for a superseded ticket is discarded
// with ErrStale.
//
// When the last question is finalized the session finishes and the record
// is archived. An archive failure is returned together with the outcome;
// the session stays finished and Archive may be retried.
func (c *Controller) ApplyAnswer(ctx context.Context, t Ticket, label string, labelOK bool) (*Outcome, error) {
	if !c.current(t) || c.state.Phase != PhaseEvaluating {
		c.log.Debug("discarding stale answer result", "ticket_index", t.Index, "ticket_seq", t.Seq)
		return nil, ErrStale
	}

	raw := c.pendingAnswer
	correct := answer.Validate(c.state.Current.ExpectedAnswer, raw)
	e, source := c.resolveEmotion(raw, label, labelOK)
	return c.finalize(ctx, raw, correct, e, source, false)
}

// Skip finalizes the current question as unanswered: empty answer,
// incorrect, neutral emotion whatever the policy. It is valid in
// AWAITING_ANSWER and EVALUATING; a pending emotion lookup becomes stale.
func (c *Controller) Skip(ctx context.Context) (*Outcome, error) {
	if c.state == nil {
		return nil, ErrNoSession
	}
	if c.state.Phase != PhaseAwaitingAnswer && c.state.Phase != PhaseEvaluating {
		return nil, c.reject("skip")
	}
	c.seq++
	return c.finalize(ctx, "", false, emotion.Neutral, SourceSkip, true)
}

func (c *Controller) resolveEmotion(raw, label string, labelOK bool) (emotion.Emotion, string) {
	if c.state.Policy == difficulty.Fixed {
		return emotion.Neutral, SourcePolicy
	}
	if labelOK {
		if e, ok := emotion.ParseLabel(label); ok {
			return e, SourceLabel
		}
		c.log.Warn("ignoring malformed emotion label", "label", label)
	}
	return emotion.Classify(raw), SourceText
}

func (c *Controller) finalize(ctx context.Context, raw string, correct bool, e emotion.Emotion, source string, skipped bool) (*Outcome, error) {
	s := c.state
	item := s.Current

	s.QuestionIndex++
	out := Outcome{
		Index:         s.QuestionIndex,
		ItemID:        item.ID,
		Difficulty:    item.Difficulty,
		Emotion:       e,
		EmotionSource: source,
		Correct:       correct,
		Skipped:       skipped,
		Answer:        raw,
		AnsweredAt:    c.opts.Now(),
	}
	s.Outcomes = append(s.Outcomes, out)
	s.Used[item.ID] = struct{}{}

	prev := s.CurrentDifficulty
	s.CurrentDifficulty = difficulty.Next(prev, correct, e, s.Policy, s.QuestionIndex)
	s.Current = nil
	c.pendingAnswer = ""

	c.log.Info("question finalized",
		"session_id", s.ID,
		"index", out.Index,
		"item_id", out.ItemID,
		"correct", correct,
		"emotion", e,
		"emotion_source", source,
		"skipped", skipped,
		"next_difficulty", s.CurrentDifficulty,
	)

	if s.QuestionIndex < MaxQuestions {
		s.Phase = PhaseReady
		return &out, nil
	}

	s.Phase = PhaseFinished
	s.FinishedAt = c.opts.Now()
	if err := c.Archive(ctx); err != nil {
		return &out, err
	}
	return &out, nil
}

// Unarchived reports whether the session finished without reaching the
// configured sink.
func (c *Controller) Unarchived() bool {
	s := c.state
	return s != nil && s.Phase == PhaseFinished && !s.Archived && c.opts.Sink != nil
}

// Archive hands the finished session to the sink. It is a no-op when the
// session was already archived or no sink is configured.
func (c *Controller) Archive(ctx context.Context) error {
	if c.state == nil {
		return ErrNoSession
	}
	s := c.state
	if s.Phase != PhaseFinished {
		return c.reject("archive")
	}
	if s.Archived || c.opts.Sink == nil {
		return nil
	}
	if err := c.opts.Sink.Archive(ctx, c.Record()); err != nil {
		c.log.Error("archiving session failed", "session_id", s.ID, "error", err)
		return fmt.Errorf("archive session %s: %w", s.ID, err)
	}
	s.Archived = true
	c.log.Info("session archived", "session_id", s.ID, "questions", len(s.Outcomes))
	return nil
}
