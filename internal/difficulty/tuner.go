package difficulty

import (
	"github.com/abhisek/fluentz/internal/emotion"
	"github.com/abhisek/fluentz/internal/practice"
)

// Curriculum is a fixed difficulty sequence, one slot per question.
type Curriculum []practice.Difficulty

// DefaultCurriculum serves four easy, three medium and three hard questions.
var DefaultCurriculum = Curriculum{
	practice.Easy, practice.Easy, practice.Easy, practice.Easy,
	practice.Medium, practice.Medium, practice.Medium,
	practice.Hard, practice.Hard, practice.Hard,
}

// At returns the difficulty for the 1-based question number n. Numbers
// past the end clamp to the last slot and numbers below 1 to the first.
func (c Curriculum) At(n int) practice.Difficulty {
	if len(c) == 0 {
		return practice.Easy
	}
	switch {
	case n < 1:
		return c[0]
	case n > len(c):
		return c[len(c)-1]
	default:
		return c[n-1]
	}
}

// Next computes the difficulty of the question after the one just
// answered. indexAfter is the session's question index after counting
// this answer, so indexAfter+1 is the number of the question about to be
// served.
//
// Under Adaptive, only a correct answer with positive emotion promotes and
// only an incorrect answer with negative emotion demotes.
func Next(current practice.Difficulty, correct bool, e emotion.Emotion, policy Policy, indexAfter int) practice.Difficulty {
	if policy == Fixed {
		return DefaultCurriculum.At(indexAfter + 1)
	}

	if !current.Valid() {
		return practice.Easy
	}
	switch {
	case correct && e == emotion.Positive:
		return current.Harder()
	case !correct && e == emotion.Negative:
		return current.Easier()
	default:
		return current
	}
}

// Suggest moves one level by emotion alone. It backs the catalog API's
// next-practice endpoint, which has no notion of correctness.
func Suggest(current practice.Difficulty, e emotion.Emotion) practice.Difficulty {
	if !current.Valid() {
		return practice.Easy
	}
	switch e {
	case emotion.Positive:
		return current.Harder()
	case emotion.Negative:
		return current.Easier()
	default:
		return current
	}
}
