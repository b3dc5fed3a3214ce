package session

import (
	"time"

	"github.com/abhisek/fluentz/internal/emotion"
	"github.com/abhisek/fluentz/internal/practice"
)

// Tally counts results for one group of questions.
type Tally struct {
	Attempted int
	Correct   int
}

// Summary holds the data shown at the end of a session.
type Summary struct {
	Duration       time.Duration
	TotalQuestions int
	TotalCorrect   int
	Skipped        int
	Accuracy       float64
	ByDifficulty   map[practice.Difficulty]Tally
	Emotions       map[emotion.Emotion]int

	// Path is the difficulty of each question in order.
	Path []practice.Difficulty
}

// BuildSummary aggregates a session record.
func BuildSummary(rec Record) *Summary {
	sum := &Summary{
		TotalQuestions: len(rec.Outcomes),
		ByDifficulty:   make(map[practice.Difficulty]Tally),
		Emotions:       make(map[emotion.Emotion]int),
	}
	for _, o := range rec.Outcomes {
		t := sum.ByDifficulty[o.Difficulty]
		t.Attempted++
		if o.Correct {
			t.Correct++
			sum.TotalCorrect++
		}
		sum.ByDifficulty[o.Difficulty] = t
		if o.Skipped {
			sum.Skipped++
		}
		sum.Emotions[o.Emotion]++
		sum.Path = append(sum.Path, o.Difficulty)
	}
	if sum.TotalQuestions > 0 {
		sum.Accuracy = float64(sum.TotalCorrect) / float64(sum.TotalQuestions)
	}
	if !rec.FinishedAt.IsZero() {
		sum.Duration = rec.FinishedAt.Sub(rec.StartedAt)
	}
	return sum
}
