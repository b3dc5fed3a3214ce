package difficulty

import (
	"testing"

	"github.com/abhisek/fluentz/internal/emotion"
	"github.com/abhisek/fluentz/internal/practice"
)

func TestNext_Adaptive(t *testing.T) {
	tests := []struct {
		name    string
		current practice.Difficulty
		correct bool
		emotion emotion.Emotion
		want    practice.Difficulty
	}{
		{"promote easy", practice.Easy, true, emotion.Positive, practice.Medium},
		{"promote medium", practice.Medium, true, emotion.Positive, practice.Hard},
		{"ceiling", practice.Hard, true, emotion.Positive, practice.Hard},
		{"demote hard", practice.Hard, false, emotion.Negative, practice.Medium},
		{"floor", practice.Easy, false, emotion.Negative, practice.Easy},
		{"neutral incorrect", practice.Medium, false, emotion.Neutral, practice.Medium},
		{"neutral correct", practice.Medium, true, emotion.Neutral, practice.Medium},
		{"positive but incorrect", practice.Medium, false, emotion.Positive, practice.Medium},
		{"negative but correct", practice.Medium, true, emotion.Negative, practice.Medium},
		{"invalid current resets", practice.Difficulty("expert"), true, emotion.Positive, practice.Easy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Next(tt.current, tt.correct, tt.emotion, Adaptive, 3)
			if got != tt.want {
				t.Errorf("Next(%s, %v, %s) = %s, want %s", tt.current, tt.correct, tt.emotion, got, tt.want)
			}
		})
	}
}

func TestNext_FixedFollowsCurriculum(t *testing.T) {
	want := []practice.Difficulty{
		practice.Easy, practice.Easy, practice.Easy, practice.Easy,
		practice.Medium, practice.Medium, practice.Medium,
		practice.Hard, practice.Hard, practice.Hard,
	}

	// Question 1 is served at the session's starting difficulty; every later
	// question comes from Next with the index after the previous answer.
	got := []practice.Difficulty{practice.Easy}
	current := practice.Easy
	combos := []struct {
		correct bool
		e       emotion.Emotion
	}{
		{true, emotion.Positive}, {false, emotion.Negative}, {true, emotion.Neutral},
	}
	for i := 1; i < 10; i++ {
		c := combos[i%len(combos)]
		current = Next(current, c.correct, c.e, Fixed, i)
		got = append(got, current)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("question %d difficulty = %s, want %s", i+1, got[i], want[i])
		}
	}
}

func TestCurriculum_At(t *testing.T) {
	tests := []struct {
		n    int
		want practice.Difficulty
	}{
		{0, practice.Easy},
		{1, practice.Easy},
		{4, practice.Easy},
		{5, practice.Medium},
		{7, practice.Medium},
		{8, practice.Hard},
		{10, practice.Hard},
		{11, practice.Hard},
		{99, practice.Hard},
	}
	for _, tt := range tests {
		if got := DefaultCurriculum.At(tt.n); got != tt.want {
			t.Errorf("At(%d) = %s, want %s", tt.n, got, tt.want)
		}
	}
	if got := (Curriculum{}).At(3); got != practice.Easy {
		t.Errorf("empty curriculum At(3) = %s, want easy", got)
	}
}

func TestSuggest(t *testing.T) {
	if got := Suggest(practice.Easy, emotion.Positive); got != practice.Medium {
		t.Errorf("Suggest(easy, POSITIVE) = %s, want medium", got)
	}
	if got := Suggest(practice.Medium, emotion.Negative); got != practice.Easy {
		t.Errorf("Suggest(medium, NEGATIVE) = %s, want easy", got)
	}
	if got := Suggest(practice.Hard, emotion.Neutral); got != practice.Hard {
		t.Errorf("Suggest(hard, NEUTRAL) = %s, want hard", got)
	}
	if got := Suggest("", emotion.Positive); got != practice.Easy {
		t.Errorf("Suggest(\"\", POSITIVE) = %s, want easy", got)
	}
}

func TestParsePolicy(t *testing.T) {
	for _, s := range []string{"fixed", "FIXED", " Fixed "} {
		if p, err := ParsePolicy(s); err != nil || p != Fixed {
			t.Errorf("ParsePolicy(%q) = (%s, %v), want FIXED", s, p, err)
		}
	}
	if p, err := ParsePolicy("adaptive"); err != nil || p != Adaptive {
		t.Errorf("ParsePolicy(adaptive) = (%s, %v), want ADAPTIVE", p, err)
	}
	if _, err := ParsePolicy("random"); err == nil {
		t.Error("ParsePolicy(random): expected error")
	}
	if Adaptive.Label() != "adaptive" {
		t.Errorf("Label() = %q, want adaptive", Adaptive.Label())
	}
}
