package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/abhisek/fluentz/internal/emotion"
	"github.com/abhisek/fluentz/internal/llm"
	"github.com/abhisek/fluentz/internal/practice"
)

func testCatalog() *practice.MemoryCatalog {
	return practice.NewMemoryCatalog(
		practice.Item{ID: "e1", Difficulty: practice.Easy, Prompt: "Say hello.", ExpectedAnswer: "Hello"},
		practice.Item{ID: "e2", Difficulty: practice.Easy, Prompt: "Say thanks.", ExpectedAnswer: "Thank you"},
		practice.Item{ID: "m1", Difficulty: practice.Medium, Prompt: "Order a coffee.", ExpectedAnswer: "A coffee please"},
		practice.Item{ID: "m2", Difficulty: practice.Medium, Prompt: "Ask the time.", ExpectedAnswer: "What time is it"},
		practice.Item{ID: "h1", Difficulty: practice.Hard, Prompt: "Ask for a refund.", ExpectedAnswer: "I would like a refund"},
	)
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestRuleAdvisor_EmotionOnly(t *testing.T) {
	a := NewRuleAdvisor(testCatalog(), seeded())
	current := practice.Item{ID: "m1", Difficulty: practice.Medium}

	tests := []struct {
		emotion emotion.Emotion
		want    practice.Difficulty
	}{
		{emotion.Positive, practice.Hard},
		{emotion.Negative, practice.Easy},
		{emotion.Neutral, practice.Medium},
	}
	for _, tt := range tests {
		it, err := a.Suggest(context.Background(), current, tt.emotion, "")
		if err != nil {
			t.Fatalf("Suggest(%s): %v", tt.emotion, err)
		}
		if it == nil || it.Difficulty != tt.want {
			t.Errorf("Suggest(%s) = %+v, want %s item", tt.emotion, it, tt.want)
		}
		if it != nil && it.ID == current.ID {
			t.Errorf("Suggest(%s) returned the current item", tt.emotion)
		}
	}
}

func TestRuleAdvisor_ExplicitTarget(t *testing.T) {
	a := NewRuleAdvisor(testCatalog(), seeded())
	it, err := a.Suggest(context.Background(), practice.Item{ID: "e1", Difficulty: practice.Easy}, emotion.Negative, practice.Hard)
	if err != nil || it == nil || it.ID != "h1" {
		t.Errorf("Suggest = (%+v, %v), want h1", it, err)
	}

	// Only the current item exists at the target.
	it, err = a.Suggest(context.Background(), practice.Item{ID: "h1", Difficulty: practice.Hard}, emotion.Neutral, practice.Hard)
	if err != nil || it != nil {
		t.Errorf("Suggest = (%+v, %v), want nil", it, err)
	}
}

func TestLLMAdvisor_PicksOfferedCandidate(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockReply{
		Content: json.RawMessage(`{"item_id":"m2","reason":"different situation"}`),
	})
	a := New(mock, testCatalog(), DefaultConfig(), seeded())

	it, err := a.Suggest(context.Background(),
		practice.Item{ID: "e1", Difficulty: practice.Easy, Prompt: "Say hello."}, emotion.Positive, practice.Medium)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if it == nil || it.ID != "m2" {
		t.Fatalf("Suggest = %+v, want m2", it)
	}

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 LLM call, got %d", mock.CallCount())
	}
	req := mock.Calls()[0].Request
	if req.Schema != SuggestionSchema {
		t.Error("request should carry the suggestion schema")
	}
	msg := req.Messages[0].Content
	for _, want := range []string{"Last item (easy): Say hello.", "Learner emotion: positive", "- m1:", "- m2:"} {
		if !strings.Contains(msg, want) {
			t.Errorf("prompt missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "- h1:") {
		t.Error("prompt should only offer candidates at the target difficulty")
	}
}

func TestLLMAdvisor_RejectsInventedID(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockReply{
		Content: json.RawMessage(`{"item_id":"m9","reason":"made up"}`),
	})
	a := New(mock, testCatalog(), DefaultConfig(), seeded())

	_, err := a.Suggest(context.Background(), practice.Item{ID: "e1", Difficulty: practice.Easy}, emotion.Neutral, practice.Medium)
	var unknown *ErrUnknownCandidate
	if !errors.As(err, &unknown) || unknown.ID != "m9" {
		t.Fatalf("Suggest error = %v, want ErrUnknownCandidate(m9)", err)
	}
}

func TestLLMAdvisor_SingleCandidateSkipsModel(t *testing.T) {
	mock := llm.NewMockProvider()
	a := New(mock, testCatalog(), DefaultConfig(), seeded())

	it, err := a.Suggest(context.Background(), practice.Item{ID: "m1", Difficulty: practice.Medium}, emotion.Positive, practice.Hard)
	if err != nil || it == nil || it.ID != "h1" {
		t.Fatalf("Suggest = (%+v, %v), want h1", it, err)
	}
	if mock.CallCount() != 0 {
		t.Errorf("expected no LLM call, got %d", mock.CallCount())
	}
}

func TestLLMAdvisor_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockReply{Err: &llm.ErrRateLimit{}})
	a := New(mock, testCatalog(), DefaultConfig(), seeded())

	it, err := a.Suggest(context.Background(), practice.Item{ID: "e1", Difficulty: practice.Easy}, emotion.Neutral, practice.Medium)
	if err == nil || it != nil {
		t.Fatalf("Suggest = (%+v, %v), want error", it, err)
	}
}

func TestLLMAdvisor_CapsCandidates(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockReply{Content: json.RawMessage(`{"item_id":"m1","reason":"r"}`)})
	cfg := DefaultConfig()
	cfg.MaxCandidates = 1
	a := New(mock, testCatalog(), cfg, seeded())

	it, err := a.Suggest(context.Background(), practice.Item{ID: "e1", Difficulty: practice.Easy}, emotion.Neutral, practice.Medium)
	if err != nil || it == nil || it.Difficulty != practice.Medium {
		t.Fatalf("Suggest = (%+v, %v)", it, err)
	}
	if mock.CallCount() != 0 {
		t.Errorf("a single capped candidate needs no LLM call")
	}
}
