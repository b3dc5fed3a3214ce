package session

import (
	"context"

	"github.com/abhisek/fluentz/internal/difficulty"
	"github.com/abhisek/fluentz/internal/emotion"
	"github.com/abhisek/fluentz/internal/practice"
)

// Advisor suggests the next practice item after an answer. It is best
// effort: errors and nil results are ignored.
type Advisor interface {
	Suggest(ctx context.Context, current practice.Item, e emotion.Emotion, target practice.Difficulty) (*practice.Item, error)
}

// AdviceRequest carries what the advisor needs about the last answer.
type AdviceRequest struct {
	Ticket  Ticket
	Item    practice.Item
	Emotion emotion.Emotion
}

// BeginAdvice issues an advisory request for the question just answered.
// ok is false when no advisor is configured, the policy is not adaptive,
// or the session is not between questions.
func (c *Controller) BeginAdvice() (req AdviceRequest, ok bool) {
	s := c.state
	if c.opts.Advisor == nil || s == nil || s.Policy != difficulty.Adaptive || s.Phase != PhaseReady || len(s.Outcomes) == 0 {
		return AdviceRequest{}, false
	}
	last := s.Outcomes[len(s.Outcomes)-1]
	req = AdviceRequest{
		Ticket:  c.issue(),
		Item:    practice.Item{ID: last.ItemID, Difficulty: last.Difficulty},
		Emotion: last.Emotion,
	}
	return req, true
}

// Advise calls the advisor, bounded by the advice timeout. It does not
// modify the controller.
func (c *Controller) Advise(ctx context.Context, req AdviceRequest) *practice.Item {
	if c.opts.Advisor == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.AdviceTimeout)
	defer cancel()

	current := req.Item
	if lk, ok := c.opts.Catalog.(practice.Lookup); ok {
		// Advisors work better with the full prompt; a failed lookup is harmless.
		if it, err := lk.Get(ctx, current.ID); err == nil {
			current = *it
		}
	}

	it, err := c.opts.Advisor.Suggest(ctx, current, req.Emotion, req.Ticket.Difficulty)
	if err != nil {
		c.log.Warn("next-practice advisory failed", "error", err)
		return nil
	}
	return it
}

// ApplyAdvice stores a suggestion for the next fetch. It is accepted only
// while the ticket is current and the item is unused and at the session's
// next difficulty; otherwise it is dropped and false is returned.
func (c *Controller) ApplyAdvice(t Ticket, it *practice.Item) bool {
	if it == nil || !c.current(t) || c.state.Phase != PhaseReady {
		return false
	}
	s := c.state
	if _, used := s.Used[it.ID]; used || it.Difficulty != s.CurrentDifficulty {
		c.log.Debug("advisory suggestion rejected", "item_id", it.ID, "difficulty", it.Difficulty, "want", s.CurrentDifficulty)
		return false
	}
	sug := *it
	s.Suggested = &sug
	return true
}

// SuggestNext runs the advisory synchronously. It reports whether a
// suggestion was stored.
func (c *Controller) SuggestNext(ctx context.Context) bool {
	req, ok := c.BeginAdvice()
	if !ok {
		return false
	}
	return c.ApplyAdvice(req.Ticket, c.Advise(ctx, req))
}
