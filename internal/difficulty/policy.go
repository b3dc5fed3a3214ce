package difficulty

import (
	"fmt"
	"strings"
)

// Policy governs how difficulty advances across a session. A session's
// policy is fixed when it starts.
type Policy string

const (
	// Fixed follows DefaultCurriculum and ignores answers and emotion.
	Fixed Policy = "FIXED"
	// Adaptive moves one level at a time based on correctness and emotion.
	Adaptive Policy = "ADAPTIVE"
)

// ParsePolicy parses a policy name case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(Fixed):
		return Fixed, nil
	case string(Adaptive):
		return Adaptive, nil
	default:
		return "", fmt.Errorf("unknown policy: %q (want fixed or adaptive)", s)
	}
}

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	return p == Fixed || p == Adaptive
}

// Label is the lower-case name used in exports and the UI.
func (p Policy) Label() string {
	return strings.ToLower(string(p))
}

func (p Policy) String() string {
	return string(p)
}
