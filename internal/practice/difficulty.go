package practice

import (
	"fmt"
	"strings"
)

// Difficulty is the ordinal level of a practice item: easy < medium < hard.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// AllDifficulties lists the levels in ascending order.
var AllDifficulties = []Difficulty{Easy, Medium, Hard}

// ParseDifficulty parses a difficulty label case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty: %q", s)
	}
	return d, nil
}

// Valid reports whether d is one of the three known levels.
func (d Difficulty) Valid() bool {
	return d.Rank() >= 0
}

// Rank returns the zero-based position of d in the ordering, or -1.
func (d Difficulty) Rank() int {
	switch d {
	case Easy:
		return 0
	case Medium:
		return 1
	case Hard:
		return 2
	default:
		return -1
	}
}

// Harder returns the next level up. Hard is the ceiling.
func (d Difficulty) Harder() Difficulty {
	switch d {
	case Easy:
		return Medium
	case Medium, Hard:
		return Hard
	default:
		return d
	}
}

// Easier returns the next level down. Easy is the floor.
func (d Difficulty) Easier() Difficulty {
	switch d {
	case Hard:
		return Medium
	case Medium, Easy:
		return Easy
	default:
		return d
	}
}

func (d Difficulty) String() string {
	return string(d)
}

// UnmarshalText accepts any letter case, so "Easy" from older catalogs
// decodes to Easy.
func (d *Difficulty) UnmarshalText(b []byte) error {
	v, err := ParseDifficulty(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
