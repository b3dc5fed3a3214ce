package emotion

import "strings"

// Emotion is the coarse affect inferred from an answer.
type Emotion string

const (
	Positive Emotion = "POSITIVE"
	Negative Emotion = "NEGATIVE"
	Neutral  Emotion = "NEUTRAL"
)

// All lists every emotion in display order.
var All = []Emotion{Positive, Neutral, Negative}

// ParseLabel maps an external label to an Emotion. Matching is
// case-insensitive. ok is false when the label is missing or is not one of
// the three known names; the emotion is then Neutral.
func ParseLabel(label string) (e Emotion, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case string(Positive):
		return Positive, true
	case string(Negative):
		return Negative, true
	case string(Neutral):
		return Neutral, true
	default:
		return Neutral, false
	}
}

// FromLabel maps an external label to an Emotion. Missing or malformed
// labels are Neutral.
func FromLabel(label string) Emotion {
	e, _ := ParseLabel(label)
	return e
}

// Valid reports whether e is one of the three known values.
func (e Emotion) Valid() bool {
	return e == Positive || e == Negative || e == Neutral
}

func (e Emotion) String() string {
	return string(e)
}
