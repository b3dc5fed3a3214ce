package session

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/abhisek/fluentz/internal/difficulty"
	"github.com/abhisek/fluentz/internal/practice"
)

// Snapshot is the serializable form of a session, used to persist an
// in-progress session across restarts.
type Snapshot struct {
	Version           int                 `json:"version"`
	ID                string              `json:"id"`
	Participant       string              `json:"participant"`
	Policy            difficulty.Policy   `json:"policy"`
	Phase             string              `json:"phase"`
	QuestionIndex     int                 `json:"question_index"`
	UsedIDs           []string            `json:"used_ids"`
	Outcomes          []Outcome           `json:"outcomes"`
	CurrentDifficulty practice.Difficulty `json:"current_difficulty"`
	Current           *practice.Item      `json:"current,omitempty"`
	StartedAt         time.Time           `json:"started_at"`
	FinishedAt        time.Time           `json:"finished_at,omitzero"`
	Archived          bool                `json:"archived"`
}

// SnapshotVersion is the current snapshot format.
const SnapshotVersion = 1

// Snapshot captures the current session.
func (c *Controller) Snapshot() (*Snapshot, error) {
	s := c.state
	if s == nil {
		return nil, ErrNoSession
	}

	used := make([]string, 0, len(s.Used))
	for id := range s.Used {
		used = append(used, id)
	}
	sort.Strings(used)

	snap := &Snapshot{
		Version:           SnapshotVersion,
		ID:                s.ID,
		Participant:       s.Participant,
		Policy:            s.Policy,
		Phase:             s.Phase.String(),
		QuestionIndex:     s.QuestionIndex,
		UsedIDs:           used,
		Outcomes:          append([]Outcome(nil), s.Outcomes...),
		CurrentDifficulty: s.CurrentDifficulty,
		StartedAt:         s.StartedAt,
		FinishedAt:        s.FinishedAt,
		Archived:          s.Archived,
	}
	if s.Current != nil {
		it := *s.Current
		snap.Current = &it
	}
	return snap, nil
}

// Restore replaces the controller's session with snap after checking its
// invariants. In-flight requests are lost: an EVALUATING session resumes
// in AWAITING_ANSWER and any outstanding ticket becomes stale.
func (c *Controller) Restore(snap *Snapshot) error {
	if snap == nil {
		return errors.New("restore session: nil snapshot")
	}
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	c.generation++
	s := newState(snap.ID, snap.Participant, snap.Policy, snap.StartedAt, c.generation)
	s.QuestionIndex = snap.QuestionIndex
	s.Outcomes = append([]Outcome(nil), snap.Outcomes...)
	s.CurrentDifficulty = snap.CurrentDifficulty
	s.FinishedAt = snap.FinishedAt
	s.Archived = snap.Archived
	for _, id := range snap.UsedIDs {
		s.Used[id] = struct{}{}
	}

	switch {
	case s.QuestionIndex >= MaxQuestions:
		s.Phase = PhaseFinished
	case snap.Current != nil:
		it := *snap.Current
		s.Current = &it
		s.Phase = PhaseAwaitingAnswer
	case snap.Phase == PhaseReady.String():
		s.Phase = PhaseReady
	default:
		s.Phase = PhaseLoading
	}

	c.state = s
	c.pendingAnswer = ""
	c.log.Info("session restored", "session_id", s.ID, "policy", s.Policy, "question_index", s.QuestionIndex, "phase", s.Phase)
	return nil
}

// Finished reports whether every question of the snapshot was answered.
func (snap *Snapshot) Finished() bool {
	return snap.QuestionIndex >= MaxQuestions
}

// Validate checks the invariants a restorable snapshot must satisfy.
func (snap *Snapshot) Validate() error {
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	if snap.ID == "" {
		return errors.New("snapshot has no session id")
	}
	if !snap.Policy.Valid() {
		return fmt.Errorf("invalid policy %q", snap.Policy)
	}
	if !snap.CurrentDifficulty.Valid() {
		return fmt.Errorf("invalid current difficulty %q", snap.CurrentDifficulty)
	}
	if snap.QuestionIndex < 0 || snap.QuestionIndex > MaxQuestions {
		return fmt.Errorf("question index %d out of range", snap.QuestionIndex)
	}
	if len(snap.Outcomes) != snap.QuestionIndex {
		return fmt.Errorf("have %d outcomes for question index %d", len(snap.Outcomes), snap.QuestionIndex)
	}
	for i, o := range snap.Outcomes {
		if o.Index != i+1 {
			return fmt.Errorf("outcome %d has index %d", i, o.Index)
		}
	}
	return nil
}
