package practice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abhisek/fluentz/internal/emotion"
)

// DefaultRequestTimeout bounds every catalog HTTP request.
const DefaultRequestTimeout = 8 * time.Second

// HTTPCatalog reads practice items from the catalog HTTP API served by
// `fluentz serve`.
type HTTPCatalog struct {
	baseURL string
	client  *http.Client
}

var (
	_ Catalog = (*HTTPCatalog)(nil)
	_ Lookup  = (*HTTPCatalog)(nil)
)

// NewHTTPCatalog creates a client for the API rooted at baseURL. A zero
// timeout selects DefaultRequestTimeout.
func NewHTTPCatalog(baseURL string, timeout time.Duration) *HTTPCatalog {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &HTTPCatalog{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPCatalog) FetchByDifficulty(ctx context.Context, d Difficulty) ([]Item, error) {
	var items []Item
	err := c.do(ctx, http.MethodGet, "/api/practices/difficulty/"+url.PathEscape(string(d)), nil, &items)
	return items, err
}

func (c *HTTPCatalog) FetchAll(ctx context.Context) ([]Item, error) {
	var items []Item
	err := c.do(ctx, http.MethodGet, "/api/practices", nil, &items)
	return items, err
}

func (c *HTTPCatalog) Get(ctx context.Context, id string) (*Item, error) {
	var it Item
	if err := c.do(ctx, http.MethodGet, "/api/practices/"+url.PathEscape(id), nil, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// NextRequest is the body of the next-practice endpoint.
type NextRequest struct {
	Practice Item            `json:"practice"`
	Emotion  emotion.Emotion `json:"emotion"`
}

// Suggest asks the server for a follow-up item chosen by emotion alone.
// The target difficulty is computed server-side and is ignored here.
func (c *HTTPCatalog) Suggest(ctx context.Context, current Item, e emotion.Emotion, _ Difficulty) (*Item, error) {
	var it Item
	err := c.do(ctx, http.MethodPost, "/api/practices/FindNextPractice", NextRequest{Practice: current, Emotion: e}, &it)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog API: HTTP %d: %s", e.Code, e.Body)
}

func (c *HTTPCatalog) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && method == http.MethodGet {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
