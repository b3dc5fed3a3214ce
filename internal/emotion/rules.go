package emotion

import "strings"

// Rule is one step in the text classification chain.
// Match returns ok=false when the rule does not apply.
type Rule interface {
	Name() string
	Match(text string) (e Emotion, ok bool)
}

// DefaultRules returns the text rules in precedence order.
func DefaultRules() []Rule {
	return []Rule{
		blankRule{},
		keywordRule{name: "positive", emotion: Positive, needles: []string{"!", "great"}},
		keywordRule{name: "negative", emotion: Negative, needles: []string{"sad", ":("}},
	}
}

var defaultRules = DefaultRules()

// Classify maps raw answer text to an emotion using the default rules.
func Classify(text string) Emotion {
	e, _ := RunRules(defaultRules, text)
	return e
}

// RunRules applies rules in order and returns the first match together with
// the matching rule's name. Neutral with rule "fallback" when nothing matches.
func RunRules(rules []Rule, text string) (Emotion, string) {
	for _, r := range rules {
		if e, ok := r.Match(text); ok {
			return e, r.Name()
		}
	}
	return Neutral, "fallback"
}

type blankRule struct{}

func (blankRule) Name() string { return "blank" }

func (blankRule) Match(text string) (Emotion, bool) {
	if strings.TrimSpace(text) == "" {
		return Neutral, true
	}
	return "", false
}

// keywordRule matches when the text contains any needle, ignoring case.
type keywordRule struct {
	name    string
	emotion Emotion
	needles []string
}

func (r keywordRule) Name() string { return r.name }

func (r keywordRule) Match(text string) (Emotion, bool) {
	lower := strings.ToLower(text)
	for _, n := range r.needles {
		if strings.Contains(lower, n) {
			return r.emotion, true
		}
	}
	return "", false
}
