package session

import (
	"time"

	"github.com/abhisek/fluentz/internal/difficulty"
	"github.com/abhisek/fluentz/internal/emotion"
	"github.com/abhisek/fluentz/internal/practice"
)

// MaxQuestions is the number of questions in every session.
const MaxQuestions = 10

// Phase is the controller's position in the question cycle.
type Phase int

const (
	PhaseLoading        Phase = iota // Fetching the next item
	PhaseReady                       // Between questions
	PhaseAwaitingAnswer              // Item presented, waiting for input
	PhaseEvaluating                  // Answer received, emotion lookup in flight
	PhaseFinished                    // All questions answered
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "LOADING"
	case PhaseReady:
		return "READY"
	case PhaseAwaitingAnswer:
		return "AWAITING_ANSWER"
	case PhaseEvaluating:
		return "EVALUATING"
	case PhaseFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Emotion sources recorded on an Outcome.
const (
	SourceLabel  = "label"  // external emotion service
	SourceText   = "text"   // text rules
	SourcePolicy = "policy" // forced neutral under the fixed policy
	SourceSkip   = "skip"   // forced neutral for a skipped question
)

// Outcome is the immutable record of one answered or skipped question.
type Outcome struct {
	Index         int                 `json:"index"`
	ItemID        string              `json:"item_id"`
	Difficulty    practice.Difficulty `json:"difficulty"`
	Emotion       emotion.Emotion     `json:"emotion"`
	EmotionSource string              `json:"emotion_source"`
	Correct       bool                `json:"correct"`
	Skipped       bool                `json:"skipped"`
	Answer        string              `json:"answer"`
	AnsweredAt    time.Time           `json:"answered_at"`
}

// State is the full runtime state of one session. It is owned by a
// Controller; callers receive copies.
type State struct {
	ID          string
	Participant string
	Policy      difficulty.Policy
	Phase       Phase

	// QuestionIndex counts finalized questions. len(Outcomes) == QuestionIndex.
	QuestionIndex int

	// Used holds the IDs of items already served in this session.
	Used map[string]struct{}

	Outcomes []Outcome

	// CurrentDifficulty is the level of the next (or current) item.
	CurrentDifficulty practice.Difficulty

	// Current is the item being answered, nil between questions.
	Current *practice.Item

	// Suggested is an advisory pick for the next item, nil when none.
	Suggested *practice.Item

	StartedAt  time.Time
	FinishedAt time.Time

	// Archived is set once the finished session was handed to the sink.
	Archived bool

	// Generation increments on every reset or restore so results of
	// requests issued before it are recognizably stale.
	Generation uint64
}

func newState(id, participant string, policy difficulty.Policy, now time.Time, generation uint64) *State {
	return &State{
		ID:                id,
		Participant:       participant,
		Policy:            policy,
		Phase:             PhaseLoading,
		Used:              make(map[string]struct{}),
		CurrentDifficulty: practice.Easy,
		StartedAt:         now,
		Generation:        generation,
	}
}

// clone returns a deep copy safe to hand to callers.
func (s *State) clone() State {
	out := *s
	out.Used = make(map[string]struct{}, len(s.Used))
	for id := range s.Used {
		out.Used[id] = struct{}{}
	}
	out.Outcomes = append([]Outcome(nil), s.Outcomes...)
	if s.Current != nil {
		it := *s.Current
		out.Current = &it
	}
	if s.Suggested != nil {
		it := *s.Suggested
		out.Suggested = &it
	}
	return out
}
