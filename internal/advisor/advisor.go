// Package advisor suggests the next practice item after an answer, either
// with a fixed emotion rule or by asking an LLM to choose among catalog
// candidates.
package advisor

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/abhisek/fluentz/internal/difficulty"
	"github.com/abhisek/fluentz/internal/emotion"
	"github.com/abhisek/fluentz/internal/llm"
	"github.com/abhisek/fluentz/internal/practice"
	"github.com/abhisek/fluentz/internal/session"
)

// ErrUnknownCandidate is returned when the model picks an ID that was not
// offered.
type ErrUnknownCandidate struct {
	ID string
}

func (e *ErrUnknownCandidate) Error() string {
	return fmt.Sprintf("advisor chose unknown item %q", e.ID)
}

// candidates returns items at target other than exclude, shuffled and
// capped at max (0 = no cap).
func candidates(ctx context.Context, cat practice.Catalog, target practice.Difficulty, exclude string, max int, rnd *rand.Rand, mu *sync.Mutex) ([]practice.Item, error) {
	items, err := cat.FetchByDifficulty(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("fetch %s candidates: %w", target, err)
	}
	out := make([]practice.Item, 0, len(items))
	for _, it := range items {
		if it.ID != exclude {
			out = append(out, it)
		}
	}
	mu.Lock()
	rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	mu.Unlock()
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out, nil
}

// RuleAdvisor picks a random item at the target difficulty. Given an empty
// target it derives one from the emotion alone: positive steps up,
// negative steps down.
type RuleAdvisor struct {
	catalog practice.Catalog
	mu      sync.Mutex
	rnd     *rand.Rand
}

var _ session.Advisor = (*RuleAdvisor)(nil)

// NewRuleAdvisor creates a RuleAdvisor. A nil rnd uses a random seed.
func NewRuleAdvisor(cat practice.Catalog, rnd *rand.Rand) *RuleAdvisor {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RuleAdvisor{catalog: cat, rnd: rnd}
}

// Suggest returns nil when no other item exists at the target difficulty.
func (a *RuleAdvisor) Suggest(ctx context.Context, current practice.Item, e emotion.Emotion, target practice.Difficulty) (*practice.Item, error) {
	if !target.Valid() {
		target = difficulty.Suggest(current.Difficulty, e)
	}
	cands, err := candidates(ctx, a.catalog, target, current.ID, 1, a.rnd, &a.mu)
	if err != nil || len(cands) == 0 {
		return nil, err
	}
	return &cands[0], nil
}

// LLMAdvisor asks an LLM to choose among candidates at the target
// difficulty.
type LLMAdvisor struct {
	provider llm.Provider
	catalog  practice.Catalog
	config   Config
	mu       sync.Mutex
	rnd      *rand.Rand
}

var _ session.Advisor = (*LLMAdvisor)(nil)

// New creates an LLMAdvisor. A nil rnd uses a random seed.
func New(provider llm.Provider, cat practice.Catalog, cfg Config, rnd *rand.Rand) *LLMAdvisor {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &LLMAdvisor{provider: provider, catalog: cat, config: cfg, rnd: rnd}
}

// suggestionOutput is the raw LLM response.
type suggestionOutput struct {
	ItemID string `json:"item_id"`
	Reason string `json:"reason"`
}

func (a *LLMAdvisor) Suggest(ctx context.Context, current practice.Item, e emotion.Emotion, target practice.Difficulty) (*practice.Item, error) {
	if !target.Valid() {
		target = difficulty.Suggest(current.Difficulty, e)
	}
	cands, err := candidates(ctx, a.catalog, target, current.ID, a.config.MaxCandidates, a.rnd, &a.mu)
	if err != nil {
		return nil, err
	}
	switch len(cands) {
	case 0:
		return nil, nil
	case 1:
		return &cands[0], nil
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeNextPractice)
	resp, err := a.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(current, e, target, cands)},
		},
		Schema:      SuggestionSchema,
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM next-practice failed: %w", err)
	}

	out, err := llm.Decode[suggestionOutput](resp)
	if err != nil {
		return nil, err
	}

	for i := range cands {
		if cands[i].ID == out.ItemID {
			return &cands[i], nil
		}
	}
	return nil, &ErrUnknownCandidate{ID: out.ItemID}
}
