// Package speech is a client for the speech service, which labels the
// emotion in a recorded answer and transcribes it.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/abhisek/fluentz/internal/emotion"
)

// DefaultTimeout bounds every request to the speech service.
const DefaultTimeout = 8 * time.Second

// ErrNoAudio is returned by Label when the signal carries no recording.
var ErrNoAudio = errors.New("speech: no audio in signal")

// EmotionResult is the /emotion response.
type EmotionResult struct {
	Label        string             `json:"label"`
	Distribution map[string]float64 `json:"distribution,omitempty"`
	Reason       string             `json:"reason,omitempty"`
	Model        string             `json:"model,omitempty"`
}

// Client talks to the speech service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

var _ emotion.SignalService = (*Client)(nil)

// NewClient creates a Client for the service at baseURL. A zero timeout
// uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "speech"),
	}
}

// Label implements emotion.SignalService by posting the recording to
// /emotion. Signals without audio return ErrNoAudio so the caller falls
// back to the text rules.
func (c *Client) Label(ctx context.Context, sig emotion.Signal) (string, error) {
	if !sig.HasAudio() {
		return "", ErrNoAudio
	}
	res, err := c.Emotion(ctx, sig.Audio, sig.MIMEType)
	if err != nil {
		return "", err
	}
	return res.Label, nil
}

// Emotion classifies a recording.
func (c *Client) Emotion(ctx context.Context, audio []byte, mimeType string) (*EmotionResult, error) {
	var out EmotionResult
	if err := c.upload(ctx, "/emotion", audio, mimeType, &out); err != nil {
		return nil, err
	}
	c.log.DebugContext(ctx, "speech emotion",
		slog.String("label", out.Label),
		slog.String("model", out.Model),
	)
	return &out, nil
}

// Transcribe converts a recording to text.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	var out struct {
		Transcription string `json:"transcription"`
	}
	if err := c.upload(ctx, "/transcribe", audio, mimeType, &out); err != nil {
		return "", err
	}
	c.log.DebugContext(ctx, "speech transcription", slog.Int("chars", len(out.Transcription)))
	return strings.TrimSpace(out.Transcription), nil
}

// upload posts audio as the multipart form field "file" and decodes the
// JSON response into out. It retries once on 5xx or network errors.
func (c *Client) upload(ctx context.Context, path string, audio []byte, mimeType string, out any) error {
	body, contentType, err := encodeFile(audio, mimeType)
	if err != nil {
		return fmt.Errorf("speech: encode %s: %w", path, err)
	}

	send := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept", "application/json")
		return c.httpClient.Do(req)
	}

	resp, err := send()
	if (err != nil || resp.StatusCode >= 500) && ctx.Err() == nil {
		reason := "network error"
		if err == nil {
			reason = fmt.Sprintf("status %d", resp.StatusCode)
			resp.Body.Close()
		}
		c.log.WarnContext(ctx, "speech retry", slog.String("path", path), slog.String("reason", reason))
		resp, err = send()
	}
	if err != nil {
		return fmt.Errorf("speech: POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("speech: POST %s: unexpected status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("speech: decode %s response: %w", path, err)
	}
	return nil
}

func encodeFile(audio []byte, mimeType string) ([]byte, string, error) {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="answer`+extension(mimeType)+`"`)
	h.Set("Content-Type", mimeType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func extension(mimeType string) string {
	switch mimeType {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/webm":
		return ".webm"
	case "audio/ogg":
		return ".ogg"
	case "audio/mpeg":
		return ".mp3"
	case "audio/mp4", "audio/x-m4a":
		return ".m4a"
	case "audio/flac":
		return ".flac"
	default:
		return ".bin"
	}
}

// MIMEType guesses an audio MIME type from a file name.
func MIMEType(name string) string {
	lower := strings.ToLower(name)
	for _, m := range []string{"audio/wav", "audio/webm", "audio/ogg", "audio/mpeg", "audio/x-m4a", "audio/flac"} {
		if strings.HasSuffix(lower, extension(m)) {
			return m
		}
	}
	return "application/octet-stream"
}
