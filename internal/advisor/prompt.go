package advisor

import (
	"fmt"
	"strings"

	"github.com/abhisek/fluentz/internal/emotion"
	"github.com/abhisek/fluentz/internal/practice"
)

const systemPrompt = `You are an English speaking coach choosing the next practice phrase for a learner.

Rules:
- Choose exactly one item from the candidate list and return its ID unchanged.
- If the learner felt negative, prefer a short, concrete, everyday phrase.
- If the learner felt positive, prefer a phrase that stretches vocabulary or structure.
- Avoid a candidate that practises the same situation as the last item.
- Never invent an ID.`

// buildUserMessage describes the last item, the learner's emotion and the
// candidates at the target difficulty.
func buildUserMessage(current practice.Item, e emotion.Emotion, target practice.Difficulty, candidates []practice.Item) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Last item (%s): %s\n", current.Difficulty, orUnknown(current.Prompt))
	if current.ExpectedAnswer != "" {
		fmt.Fprintf(&b, "Expected answer: %s\n", current.ExpectedAnswer)
	}
	fmt.Fprintf(&b, "Learner emotion: %s\n", strings.ToLower(string(e)))
	fmt.Fprintf(&b, "Next difficulty: %s\n", target)

	b.WriteString("\nCandidates:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- %s: %s\n", c.ID, c.Prompt)
	}

	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "(unknown)"
	}
	return s
}
