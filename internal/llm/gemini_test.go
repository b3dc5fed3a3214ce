package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/genai"
)

func geminiServer(t *testing.T, status int, body map[string]any) (*GeminiProvider, *map[string]any) {
	t.Helper()
	sent := map[string]any{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&sent)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "test-key", Model: "gemini-flash", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	return p, &sent
}

func geminiReply(text, finish string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
			"finishReason": finish,
		}},
		"usageMetadata": map[string]any{"promptTokenCount": 300, "candidatesTokenCount": 5, "totalTokenCount": 305},
		"modelVersion":  "gemini-2.5-flash",
	}
}

func TestGeminiProvider_HearsAudio(t *testing.T) {
	p, sent := geminiServer(t, http.StatusOK, geminiReply(`{"label":"Negative"}`, "STOP"))

	resp, err := p.Generate(context.Background(), Request{
		System: "You judge a learner's tone.",
		Messages: []Message{{
			Role:        RoleUser,
			Content:     "The learner's recorded answer is attached.",
			Attachments: []Attachment{{MIMEType: "audio/webm", Data: []byte{0x1a, 0x45}}},
		}},
		Schema: labelSchema,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.TotalTokens != 305 || resp.Model != "gemini-2.5-flash" || resp.StopReason != StopEnd {
		t.Errorf("response = %+v", resp)
	}

	contents, _ := (*sent)["contents"].([]any)
	if len(contents) != 1 {
		t.Fatalf("contents = %v", (*sent)["contents"])
	}
	parts, _ := contents[0].(map[string]any)["parts"].([]any)
	if len(parts) != 2 {
		t.Fatalf("parts = %v, want text + inline audio", parts)
	}
	if _, ok := parts[1].(map[string]any)["inlineData"]; !ok {
		t.Errorf("second part = %v, want inlineData", parts[1])
	}
	gen, _ := (*sent)["generationConfig"].(map[string]any)
	if gen["responseMimeType"] != "application/json" || gen["responseJsonSchema"] == nil {
		t.Errorf("generationConfig = %v", gen)
	}
}

func TestGeminiProvider_Failures(t *testing.T) {
	t.Run("rate limit", func(t *testing.T) {
		p, _ := geminiServer(t, http.StatusTooManyRequests, map[string]any{
			"error": map[string]any{"code": 429, "message": "quota", "status": "RESOURCE_EXHAUSTED"},
		})
		_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
		var rl *ErrRateLimit
		if !errors.As(err, &rl) {
			t.Fatalf("err = %T %v, want ErrRateLimit", err, err)
		}
	})

	t.Run("truncated", func(t *testing.T) {
		p, _ := geminiServer(t, http.StatusOK, geminiReply(`{"la`, "MAX_TOKENS"))
		_, err := p.Generate(context.Background(), Request{
			Messages: []Message{{Role: RoleUser, Content: "hi"}},
			Schema:   labelSchema,
		})
		var trunc *ErrMaxTokensExceeded
		if !errors.As(err, &trunc) {
			t.Fatalf("err = %T %v, want ErrMaxTokensExceeded", err, err)
		}
	})
}

func TestGeminiContents_Roles(t *testing.T) {
	contents := geminiContents([]Message{
		{Role: RoleUser, Content: "Transcript: hello"},
		{Role: RoleAssistant, Content: `{"label":"Neutral"}`},
	})
	if len(contents) != 2 || contents[0].Role != genai.RoleUser || contents[1].Role != genai.RoleModel {
		t.Fatalf("contents = %+v", contents)
	}
	if len(contents[0].Parts) != 1 || contents[0].Parts[0].Text != "Transcript: hello" {
		t.Errorf("parts = %+v", contents[0].Parts)
	}
}
