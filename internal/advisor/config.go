package advisor

// Config controls the behavior of the LLMAdvisor.
type Config struct {
	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxCandidates caps how many catalog items are offered to the model.
	MaxCandidates int
}

// DefaultConfig returns recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:     256,
		Temperature:   0.3,
		MaxCandidates: 12,
	}
}
