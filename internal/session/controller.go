package session

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/fluentz/internal/difficulty"
	"github.com/abhisek/fluentz/internal/emotion"
	"github.com/abhisek/fluentz/internal/practice"
)

// DefaultTimeout bounds each network call made on behalf of a session.
const DefaultTimeout = 8 * time.Second

// Options configures a Controller. Catalog is required.
type Options struct {
	Catalog practice.Catalog

	// Signals is the optional external emotion service (adaptive only).
	Signals emotion.SignalService

	// Advisor is the optional next-practice advisory (adaptive only).
	Advisor Advisor

	// Sink receives the record of every finished session.
	Sink Sink

	Participant string

	// FetchTimeout, EmotionTimeout and AdviceTimeout default to DefaultTimeout.
	FetchTimeout   time.Duration
	EmotionTimeout time.Duration
	AdviceTimeout  time.Duration

	Logger *slog.Logger
	Rand   *rand.Rand
	Now    func() time.Time
	NewID  func() string
}

// Controller drives one practice session through its question cycle.
//
// A Controller is not safe for concurrent mutation: events must be applied
// one at a time. The network-facing methods Fetch, DetectLabel and Advise
// only read their ticket and the immutable options, so a UI may run them on
// another goroutine and hand the result back through the matching Apply
// method.
type Controller struct {
	opts  Options
	log   *slog.Logger
	state *State

	// seq identifies the newest outstanding request.
	seq uint64
	// generation survives resets so tickets never collide across sessions.
	generation uint64

	pendingAnswer string
}

// New creates a Controller with no active session.
func New(opts Options) *Controller {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultTimeout
	}
	if opts.EmotionTimeout <= 0 {
		opts.EmotionTimeout = DefaultTimeout
	}
	if opts.AdviceTimeout <= 0 {
		opts.AdviceTimeout = DefaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller{opts: opts, log: log.With("component", "session")}
}

// Start begins a session under policy. When a session with the same policy
// is already active and unfinished it is resumed untouched and resumed is
// true. Any other case starts fresh; outcomes of a replaced session are
// discarded without archiving.
func (c *Controller) Start(policy difficulty.Policy) (resumed bool, err error) {
	if !policy.Valid() {
		return false, fmt.Errorf("start session: invalid policy %q", policy)
	}
	if s := c.state; s != nil && s.Policy == policy && s.Phase != PhaseFinished {
		c.log.Debug("resuming session", "session_id", s.ID, "policy", policy, "question_index", s.QuestionIndex)
		return true, nil
	}
	c.reset(policy)
	return false, nil
}

// Reset unconditionally starts a fresh session under policy.
func (c *Controller) Reset(policy difficulty.Policy) error {
	if !policy.Valid() {
		return fmt.Errorf("reset session: invalid policy %q", policy)
	}
	c.reset(policy)
	return nil
}

func (c *Controller) reset(policy difficulty.Policy) {
	if s := c.state; s != nil && !s.Archived && s.QuestionIndex > 0 {
		c.log.Info("discarding unfinished session", "session_id", s.ID, "policy", s.Policy, "question_index", s.QuestionIndex)
	}
	c.generation++
	c.state = newState(c.opts.NewID(), c.opts.Participant, policy, c.opts.Now(), c.generation)
	c.pendingAnswer = ""
	c.log.Info("session started", "session_id", c.state.ID, "policy", policy)
}

// Active reports whether a session has been started.
func (c *Controller) Active() bool {
	return c.state != nil
}

// State returns a copy of the current state. It returns ErrNoSession when
// no session was started.
func (c *Controller) State() (State, error) {
	if c.state == nil {
		return State{}, ErrNoSession
	}
	return c.state.clone(), nil
}

// Phase returns the current phase, or PhaseLoading with no session.
func (c *Controller) Phase() Phase {
	if c.state == nil {
		return PhaseLoading
	}
	return c.state.Phase
}

// Policy returns the active session's policy, or "" with no session.
func (c *Controller) Policy() difficulty.Policy {
	if c.state == nil {
		return ""
	}
	return c.state.Policy
}

// Ticket identifies one outstanding asynchronous request. A result is
// applied only if its ticket still matches the controller.
type Ticket struct {
	Generation uint64
	Index      int
	Seq        uint64

	Policy     difficulty.Policy
	Difficulty practice.Difficulty

	exclude map[string]struct{}
	preset  *practice.Item
}

func (c *Controller) issue() Ticket {
	c.seq++
	exclude := make(map[string]struct{}, len(c.state.Used))
	for id := range c.state.Used {
		exclude[id] = struct{}{}
	}
	return Ticket{
		Generation: c.state.Generation,
		Index:      c.state.QuestionIndex,
		Seq:        c.seq,
		Policy:     c.state.Policy,
		Difficulty: c.state.CurrentDifficulty,
		exclude:    exclude,
	}
}

func (c *Controller) current(t Ticket) bool {
	return c.state != nil &&
		t.Generation == c.state.Generation &&
		t.Index == c.state.QuestionIndex &&
		t.Seq == c.seq
}

func (c *Controller) reject(op string) error {
	var phase Phase
	if c.state != nil {
		phase = c.state.Phase
	}
	err := &TransitionError{Op: op, Phase: phase}
	if phase == PhaseFinished {
		c.log.Debug("operation after session finished", "op", op)
	} else {
		c.log.Error("invalid session transition", "op", op, "phase", phase)
	}
	return err
}
