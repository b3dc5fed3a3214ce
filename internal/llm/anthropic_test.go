package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicServer answers every call with status and body, and keeps the
// last request body.
func anthropicServer(t *testing.T, status int, body map[string]any) (*AnthropicProvider, *[]byte) {
	t.Helper()
	var last []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(srv.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{client: &client, model: "claude-haiku-4-5-20251001"}, &last
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 6},
	}
}

func anthropicError(kind string) map[string]any {
	return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": kind}}
}

func TestAnthropicProvider_LabelsTranscript(t *testing.T) {
	p, sent := anthropicServer(t, http.StatusOK, anthropicMessage(`{"label":"Positive"}`, "end_turn"))

	resp, err := p.Generate(context.Background(), Request{
		System: "You judge a learner's tone.",
		Messages: []Message{{
			Role:        RoleUser,
			Content:     "Transcript: Great, thank you!",
			Attachments: []Attachment{{MIMEType: "audio/webm", Data: []byte{1, 2, 3}}},
		}},
		Schema:    labelSchema,
		MaxTokens: 128,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.TotalTokens != 56 || resp.StopReason != StopEnd {
		t.Errorf("response = %+v", resp)
	}

	body := string(*sent)
	if !strings.Contains(body, "You judge a learner's tone.") {
		t.Errorf("system prompt missing from request: %s", body)
	}
	if !strings.Contains(body, "audio attachment(s) omitted") {
		t.Errorf("attachment note missing from request: %s", body)
	}
	if !strings.Contains(body, `"output_config"`) {
		t.Errorf("structured output not requested: %s", body)
	}
}

func TestAnthropicProvider_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   map[string]any
		check  func(error) bool
	}{
		{"rate limit", http.StatusTooManyRequests, anthropicError("rate_limit_error"),
			func(err error) bool { var e *ErrRateLimit; return errors.As(err, &e) }},
		{"bad key", http.StatusUnauthorized, anthropicError("authentication_error"),
			func(err error) bool { var e *ErrRequestRejected; return errors.As(err, &e) && e.Status == 401 }},
		{"server error", http.StatusInternalServerError, anthropicError("api_error"),
			func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) }},
		{"label outside enum", http.StatusOK, anthropicMessage(`{"label":"Furious"}`, "end_turn"),
			func(err error) bool { var e *ErrInvalidResponse; return errors.As(err, &e) }},
		{"truncated", http.StatusOK, anthropicMessage(`{"lab`, "max_tokens"),
			func(err error) bool { var e *ErrMaxTokensExceeded; return errors.As(err, &e) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := anthropicServer(t, tt.status, tt.body)
			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "Transcript: ok"}},
				Schema:    labelSchema,
				MaxTokens: 64,
			})
			if err == nil || !tt.check(err) {
				t.Fatalf("unexpected error %T: %v", err, err)
			}
		})
	}
}

func TestAnthropicParams_Roles(t *testing.T) {
	params := anthropicParams("claude-haiku-4-5-20251001", Request{
		Messages: []Message{
			{Role: RoleUser, Content: "Candidates: e1, e2"},
			{Role: RoleAssistant, Content: `{"item_id":"e1"}`},
		},
		Temperature: 0.2,
	})
	if len(params.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(params.Messages))
	}
	if params.Messages[0].Role != anthropic.MessageParamRoleUser || params.Messages[1].Role != anthropic.MessageParamRoleAssistant {
		t.Errorf("roles = %q, %q", params.Messages[0].Role, params.Messages[1].Role)
	}
	if len(params.System) != 0 {
		t.Errorf("system blocks = %d, want 0", len(params.System))
	}
	if p := (&AnthropicProvider{model: "claude-haiku-4-5-20251001"}); p.ModelID() != "claude-haiku-4-5-20251001" || p.Vendor() != ProviderAnthropic {
		t.Errorf("identity = %q/%q", p.ModelID(), p.Vendor())
	}
}
