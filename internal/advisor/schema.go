package advisor

import "github.com/abhisek/fluentz/internal/llm"

// SuggestionSchema constrains the advisor's structured output.
var SuggestionSchema = &llm.Schema{
	Name:        "next-practice",
	Description: "The next practice item for a language learner, chosen from the offered candidates",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"item_id": map[string]any{
				"type":        "string",
				"description": "ID of the chosen candidate, copied exactly",
			},
			"reason": map[string]any{
				"type":        "string",
				"description": "One short sentence explaining the choice",
			},
		},
		"required":             []any{"item_id", "reason"},
		"additionalProperties": false,
	},
}
