package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/fluentz/internal/difficulty"
	"github.com/abhisek/fluentz/internal/practice"
	"github.com/abhisek/fluentz/internal/session"
	"github.com/abhisek/fluentz/internal/transcript"
)

// oneDeck has a single item per level so answers are predictable.
func oneDeck() []practice.Item {
	return []practice.Item{
		{ID: "e1", Difficulty: practice.Easy, Prompt: "Greet someone.", ExpectedAnswer: "Hello"},
		{ID: "m1", Difficulty: practice.Medium, Prompt: "Ask the time.", ExpectedAnswer: "What time is it?"},
		{ID: "h1", Difficulty: practice.Hard, Prompt: "Ask for a refund.", ExpectedAnswer: "I would like a refund"},
	}
}

func runHeadless(t *testing.T, deck []practice.Item, policy difficulty.Policy, input string) (*session.Summary, string, error) {
	t.Helper()
	c := session.New(session.Options{Catalog: practice.NewMemoryCatalog(deck...)})
	var out bytes.Buffer
	saves := 0
	h := &Headless{
		Controller: c,
		Source:     transcript.NewLineSource(strings.NewReader(input), nil),
		Out:        &out,
		Save: func(context.Context, *session.Controller) error {
			saves++
			return nil
		},
	}
	sum, err := h.Run(context.Background(), policy)
	assert.Positive(t, saves)
	return sum, out.String(), err
}

func TestHeadless_FixedSessionAllSkipped(t *testing.T) {
	input := strings.Repeat(CmdSkip+"\n", session.MaxQuestions)
	sum, out, err := runHeadless(t, practice.SeedItems(), difficulty.Fixed, input)
	require.NoError(t, err)

	assert.Equal(t, session.MaxQuestions, sum.TotalQuestions)
	assert.Equal(t, session.MaxQuestions, sum.Skipped)
	assert.Contains(t, out, "Q1/10 [easy]")
	assert.Contains(t, out, "Session complete!")
	assert.Equal(t, []practice.Difficulty(difficulty.DefaultCurriculum), sum.Path)
}

func TestHeadless_AdaptivePromotes(t *testing.T) {
	// "Hello!" is correct and reads as positive, so the level rises.
	input := "Hello!\n" + strings.Repeat(CmdSkip+"\n", session.MaxQuestions-1)
	sum, out, err := runHeadless(t, oneDeck(), difficulty.Adaptive, input)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.TotalCorrect)
	require.Len(t, sum.Path, session.MaxQuestions)
	assert.Equal(t, practice.Easy, sum.Path[0])
	assert.Equal(t, practice.Medium, sum.Path[1])
	assert.Contains(t, out, "Correct!")
}

func TestHeadless_EndOfInputLeavesSessionOpen(t *testing.T) {
	sum, out, err := runHeadless(t, oneDeck(), difficulty.Fixed, "nope\n")
	assert.ErrorIs(t, err, ErrQuit)
	assert.Nil(t, sum)
	assert.Contains(t, out, "Not quite. Expected: Hello")
}

func TestHeadless_Quit(t *testing.T) {
	_, _, err := runHeadless(t, oneDeck(), difficulty.Fixed, CmdQuit+"\n")
	assert.ErrorIs(t, err, ErrQuit)
}

func TestHeadless_BadRecordingAsksAgain(t *testing.T) {
	input := "@/does/not/exist.wav\n" + strings.Repeat(CmdSkip+"\n", session.MaxQuestions)
	sum, out, err := runHeadless(t, oneDeck(), difficulty.Fixed, input)
	require.NoError(t, err)
	assert.Contains(t, out, "Could not use recording")
	assert.Equal(t, session.MaxQuestions, sum.TotalQuestions)
}
