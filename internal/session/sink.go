package session

import (
	"context"
	"time"

	"github.com/abhisek/fluentz/internal/difficulty"
)

// Record is a finished session as handed to a Sink. Outcomes are complete
// and ordered by Index.
type Record struct {
	SessionID   string            `json:"session_id"`
	Participant string            `json:"participant"`
	Policy      difficulty.Policy `json:"policy"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  time.Time         `json:"finished_at"`
	Outcomes    []Outcome         `json:"outcomes"`
}

// Sink stores or exports finished sessions.
type Sink interface {
	Archive(ctx context.Context, rec Record) error
}

// Record builds the archive record for the current session. The outcomes
// slice is a copy.
func (c *Controller) Record() Record {
	s := c.state
	if s == nil {
		return Record{}
	}
	return Record{
		SessionID:   s.ID,
		Participant: s.Participant,
		Policy:      s.Policy,
		StartedAt:   s.StartedAt,
		FinishedAt:  s.FinishedAt,
		Outcomes:    append([]Outcome(nil), s.Outcomes...),
	}
}
