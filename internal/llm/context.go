package llm

import "context"

// Purposes tag what a call is for. They key audit events, usage reports
// and mock scripts.
const (
	PurposeNextPractice = "next-practice"
	PurposeEmotionLabel = "emotion-label"
	PurposeUnknown      = "unknown"
)

type purposeKey struct{}

// WithPurpose tags ctx with the purpose of the LLM calls made under it.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the purpose set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return PurposeUnknown
}
