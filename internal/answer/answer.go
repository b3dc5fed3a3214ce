// Package answer normalizes and checks free-text answers.
//
// Checking is deliberately strict: after normalization the learner's answer
// must equal the expected answer exactly. There is no partial credit and no
// edit-distance tolerance.
package answer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Answer wraps a raw transcript as typed or recognized from speech.
type Answer string

// Normalized returns the canonical form of the answer.
func (a Answer) Normalized() string {
	return Normalize(string(a))
}

// Empty reports whether the answer has no content after normalization.
func (a Answer) Empty() bool {
	return a.Normalized() == ""
}

// Normalize composes text to NFC and lower-cases it, removes every rune
// that is neither a word character (letter, digit or underscore) nor
// whitespace, and trims the result. The trim runs last so that Normalize
// is idempotent.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(norm.NFC.String(text)) {
		if isWordRune(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Validate reports whether raw matches expected after normalization.
func Validate(expected, raw string) bool {
	return Normalize(expected) == Normalize(raw)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
