package speech

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/fluentz/internal/emotion"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second, quietLogger())
}

func readUpload(t *testing.T, r *http.Request) ([]byte, string) {
	t.Helper()
	f, hdr, err := r.FormFile("file")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	return data, hdr.Filename
}

func TestClient_Label(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /emotion", func(w http.ResponseWriter, r *http.Request) {
		data, name := readUpload(t, r)
		assert.Equal(t, []byte("RIFF"), data)
		assert.Equal(t, "answer.wav", name)
		json.NewEncoder(w).Encode(EmotionResult{
			Label:        "Positive",
			Distribution: map[string]float64{"Positive": 0.8, "Neutral": 0.2},
			Model:        "superb/hubert-base-superb-er",
		})
	})
	c := newTestClient(t, mux)

	label, err := c.Label(context.Background(), emotion.Signal{Audio: []byte("RIFF"), MIMEType: "audio/wav"})
	require.NoError(t, err)
	assert.Equal(t, "Positive", label)
	assert.Equal(t, emotion.Positive, emotion.FromLabel(label))
}

func TestClient_LabelWithoutAudio(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", time.Second, quietLogger())
	_, err := c.Label(context.Background(), emotion.Signal{Transcript: "hello"})
	assert.ErrorIs(t, err, ErrNoAudio)
}

func TestClient_Transcribe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /transcribe", func(w http.ResponseWriter, r *http.Request) {
		readUpload(t, r)
		json.NewEncoder(w).Encode(map[string]string{"transcription": "  I would like a coffee please \n"})
	})
	c := newTestClient(t, mux)

	text, err := c.Transcribe(context.Background(), []byte{1, 2, 3}, "audio/webm")
	require.NoError(t, err)
	assert.Equal(t, "I would like a coffee please", text)
}

func TestClient_RetriesOnceOnServerError(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /emotion", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
			return
		}
		readUpload(t, r)
		json.NewEncoder(w).Encode(EmotionResult{Label: "Neutral", Reason: "audio too short (<0.4s)"})
	})
	c := newTestClient(t, mux)

	res, err := c.Emotion(context.Background(), []byte("x"), "")
	require.NoError(t, err)
	assert.Equal(t, "Neutral", res.Label)
	assert.EqualValues(t, 2, calls.Load())
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /emotion", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad file", http.StatusUnprocessableEntity)
	})
	c := newTestClient(t, mux)

	_, err := c.Emotion(context.Background(), []byte("x"), "audio/ogg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.EqualValues(t, 1, calls.Load())
}

func TestClient_TimeoutFallsBackViaResolve(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /emotion", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	c := newTestClient(t, mux)

	label, ok := emotion.Resolve(context.Background(), c, emotion.Signal{Audio: []byte("x")}, 50*time.Millisecond)
	assert.False(t, ok)
	assert.Empty(t, label)
}

func TestMIMEType(t *testing.T) {
	tests := map[string]string{
		"answer.WAV":  "audio/wav",
		"clip.webm":   "audio/webm",
		"voice.m4a":   "audio/x-m4a",
		"notes.txt":   "application/octet-stream",
		"speech.flac": "audio/flac",
	}
	for name, want := range tests {
		assert.Equal(t, want, MIMEType(name), name)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("http://speech:8000/", 0, nil)
	assert.Equal(t, "http://speech:8000", c.baseURL)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}
