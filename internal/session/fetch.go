package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/fluentz/internal/practice"
)

// Served describes an item handed to the learner.
type Served struct {
	Item practice.Item

	// Number is the 1-based position of this question in the session.
	Number int

	// FallbackHint is non-empty when the item did not come from the
	// requested difficulty pool. It is informational only.
	FallbackHint string

	// Advised is true when the item came from the next-practice advisory.
	Advised bool
}

// FetchResult is the outcome of Fetch, applied with ApplyFetch.
type FetchResult struct {
	Item         *practice.Item
	FallbackHint string
	Advised      bool
	Err          error
}

// RequestNextItem fetches and presents the next item. It is valid in READY
// or LOADING. Once the session is finished it returns an error matching
// ErrSessionExhausted.
func (c *Controller) RequestNextItem(ctx context.Context) (*Served, error) {
	t, err := c.BeginFetch()
	if err != nil {
		return nil, err
	}
	return c.ApplyFetch(t, c.Fetch(ctx, t))
}

// BeginFetch moves the session to LOADING and issues a ticket for the
// next item. Any earlier outstanding request becomes stale.
func (c *Controller) BeginFetch() (Ticket, error) {
	if c.state == nil {
		return Ticket{}, ErrNoSession
	}
	s := c.state
	if s.QuestionIndex >= MaxQuestions {
		return Ticket{}, c.reject("request next item")
	}
	if s.Phase != PhaseReady && s.Phase != PhaseLoading {
		return Ticket{}, c.reject("request next item")
	}

	s.Phase = PhaseLoading
	t := c.issue()
	if sug := s.Suggested; sug != nil {
		s.Suggested = nil
		if _, used := s.Used[sug.ID]; !used && sug.Difficulty == s.CurrentDifficulty {
			it := *sug
			t.preset = &it
		}
	}
	return t, nil
}

// Fetch runs the catalog fallback ladder for t: an unused item at the
// ticket's difficulty, then an unused item at any difficulty, then a
// repeat. Each catalog call is bounded by the fetch timeout. Fetch does not
// modify the controller.
func (c *Controller) Fetch(ctx context.Context, t Ticket) FetchResult {
	if t.preset != nil {
		return FetchResult{Item: t.preset, Advised: true}
	}

	var byDiff []practice.Item
	err := c.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		byDiff, err = c.opts.Catalog.FetchByDifficulty(ctx, t.Difficulty)
		return err
	})
	if err != nil {
		c.log.Warn("difficulty fetch failed, falling back to full pool", "difficulty", t.Difficulty, "error", err)
	} else if it, ok := practice.Pick(byDiff, t.exclude, c.opts.Rand); ok {
		return FetchResult{Item: &it}
	}

	var all []practice.Item
	allErr := c.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		all, err = c.opts.Catalog.FetchAll(ctx)
		return err
	})
	if allErr != nil {
		c.log.Error("full pool fetch failed", "error", allErr)
		return FetchResult{Err: fmt.Errorf("%w: %w", ErrNoPracticesAvailable, allErr)}
	}
	if len(all) == 0 {
		return FetchResult{Err: ErrNoPracticesAvailable}
	}

	hint := fmt.Sprintf("No %q practices; used any difficulty.", t.Difficulty)
	if err != nil {
		hint = fmt.Sprintf("Failed to load %q; used any difficulty.", t.Difficulty)
	}
	if it, ok := practice.Pick(all, t.exclude, c.opts.Rand); ok {
		return FetchResult{Item: &it, FallbackHint: hint}
	}

	// Every item has been served already; allow a repeat, preferring the
	// requested difficulty.
	pool := practice.FilterByDifficulty(all, t.Difficulty)
	hint = fmt.Sprintf("All %q practices used; repeating one.", t.Difficulty)
	if len(pool) == 0 {
		pool = all
		hint = "All practices used; repeating one."
	}
	it, _ := practice.Pick(pool, nil, c.opts.Rand)
	return FetchResult{Item: &it, FallbackHint: hint}
}

// ApplyFetch presents the fetched item. A result for a superseded ticket is
// discarded with ErrStale. A failed result leaves the session in LOADING
// and returns the error.
func (c *Controller) ApplyFetch(t Ticket, res FetchResult) (*Served, error) {
	if !c.current(t) || c.state.Phase != PhaseLoading {
		c.log.Debug("discarding stale fetch result", "ticket_index", t.Index, "ticket_seq", t.Seq)
		return nil, ErrStale
	}
	if res.Err != nil {
		if errors.Is(res.Err, ErrNoPracticesAvailable) {
			c.log.Error("no practices available", "session_id", c.state.ID, "error", res.Err)
		}
		return nil, res.Err
	}
	if res.Item == nil {
		return nil, ErrNoPracticesAvailable
	}

	s := c.state
	it := *res.Item
	s.Current = &it
	s.Phase = PhaseAwaitingAnswer
	if res.FallbackHint != "" {
		c.log.Info("served fallback item", "item_id", it.ID, "difficulty", it.Difficulty, "hint", res.FallbackHint)
	}

	return &Served{
		Item:         it,
		Number:       s.QuestionIndex + 1,
		FallbackHint: res.FallbackHint,
		Advised:      res.Advised,
	}, nil
}

func (c *Controller) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.FetchTimeout)
	defer cancel()
	return fn(ctx)
}
