package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPracticesAvailable means the catalog had no item at all, even
	// after falling back to every difficulty. It is fatal for the session.
	ErrNoPracticesAvailable = errors.New("no practices found in database")

	// ErrSessionExhausted signals that all questions have been served. It is
	// a normal terminal condition, not a failure.
	ErrSessionExhausted = errors.New("session finished")

	// ErrStale is returned when an asynchronous result arrives after the
	// session moved on. The result has been discarded.
	ErrStale = errors.New("stale result discarded")

	// ErrNoSession is returned when an operation needs a started session.
	ErrNoSession = errors.New("no session started")
)

// TransitionError reports an operation attempted in a phase that does not
// allow it. It indicates a caller bug.
type TransitionError struct {
	Op    string
	Phase Phase
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid session transition: %s in phase %s", e.Op, e.Phase)
}

// Unwrap lets errors.Is(err, ErrSessionExhausted) hold for any operation
// rejected because the session already finished.
func (e *TransitionError) Unwrap() error {
	if e.Phase == PhaseFinished {
		return ErrSessionExhausted
	}
	return nil
}
