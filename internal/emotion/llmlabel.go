package emotion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"

	"github.com/abhisek/fluentz/internal/llm"
)

// LabelerConfig holds generation settings for the LLM labeler.
type LabelerConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultLabelerConfig returns sensible defaults.
func DefaultLabelerConfig() LabelerConfig {
	return LabelerConfig{
		MaxTokens:   128,
		Temperature: 0,
	}
}

// LLMLabeler is a SignalService backed by an LLM provider. Audio is
// attached to the request when present; providers that cannot read audio
// fall back to the transcript.
type LLMLabeler struct {
	provider llm.Provider
	cfg      LabelerConfig
}

var _ SignalService = (*LLMLabeler)(nil)

// NewLLMLabeler creates a labeler using provider.
func NewLLMLabeler(provider llm.Provider, cfg LabelerConfig) *LLMLabeler {
	return &LLMLabeler{provider: provider, cfg: cfg}
}

// LabelSchema constrains the labeler's structured output.
var LabelSchema = &llm.Schema{
	Name:        "emotion-label",
	Description: "Coarse emotional state of a language learner's spoken or typed answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"label": map[string]any{
				"type":        "string",
				"enum":        []any{"Positive", "Negative", "Neutral"},
				"description": "The learner's apparent emotional state",
			},
		},
		"required":             []any{"label"},
		"additionalProperties": false,
	},
}

type labelOutput struct {
	Label string `json:"label"`
}

func (l *LLMLabeler) Label(ctx context.Context, sig Signal) (string, error) {
	if !sig.HasAudio() && sig.Transcript == "" {
		return "", errors.New("emotion labeler: empty signal")
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeEmotionLabel)

	userMsg, err := buildLabelMessage(sig)
	if err != nil {
		return "", fmt.Errorf("build emotion prompt: %w", err)
	}

	msg := llm.Message{Role: llm.RoleUser, Content: userMsg}
	if sig.HasAudio() {
		msg.Attachments = []llm.Attachment{{MIMEType: sig.MIMEType, Data: sig.Audio}}
	}

	resp, err := l.provider.Generate(ctx, llm.Request{
		System:      labelSystemPrompt,
		Messages:    []llm.Message{msg},
		Schema:      LabelSchema,
		MaxTokens:   l.cfg.MaxTokens,
		Temperature: l.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("LLM emotion label failed: %w", err)
	}

	out, err := llm.Decode[labelOutput](resp)
	if err != nil {
		return "", err
	}
	return out.Label, nil
}

const labelSystemPrompt = `You judge the emotional state of a language learner from their answer to a speaking exercise.

Instructions:
- Answer Positive if the learner sounds confident, pleased or enthusiastic.
- Answer Negative if the learner sounds frustrated, discouraged or unhappy.
- Answer Neutral otherwise, including when the answer is very short or silent.
- Judge tone only. Do not judge whether the answer is correct.`

var labelUserTemplate = template.Must(template.New("emotion").Parse(`{{if .HasAudio}}The learner's recorded answer is attached.
{{end}}{{if .Transcript}}Transcript: {{.Transcript}}
{{end}}`))

func buildLabelMessage(sig Signal) (string, error) {
	var buf bytes.Buffer
	if err := labelUserTemplate.Execute(&buf, sig); err != nil {
		return "", err
	}
	return buf.String(), nil
}
