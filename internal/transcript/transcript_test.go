package transcript

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type fakeTranscriber struct {
	text string
	err  error
	got  []byte
	mime string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audio []byte, mimeType string) (string, error) {
	f.got = audio
	f.mime = mimeType
	return f.text, f.err
}

func TestLineSource_OneLinePerCapture(t *testing.T) {
	src := NewLineSource(strings.NewReader("hello there\r\nI am fine!\nlast"), nil)
	ctx := context.Background()

	for _, want := range []string{"hello there", "I am fine!", "last"} {
		res, err := Capture(ctx, src)
		if err != nil {
			t.Fatalf("Capture: %v", err)
		}
		if res.Text != want {
			t.Errorf("Text = %q, want %q", res.Text, want)
		}
		if len(res.Audio) != 0 {
			t.Errorf("typed answer should carry no audio")
		}
	}

	if _, err := Capture(ctx, src); !errors.Is(err, ErrEndOfInput) {
		t.Errorf("Capture after EOF = %v, want ErrEndOfInput", err)
	}
}

// stallingTranscriber blocks its first call until the capture is stopped.
type stallingTranscriber struct {
	text    string
	calls   atomic.Int32
	started chan struct{}
}

func (f *stallingTranscriber) Transcribe(ctx context.Context, _ []byte, _ string) (string, error) {
	if f.calls.Add(1) == 1 {
		close(f.started)
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, nil
}

func TestLineSource_StoppedCaptureKeepsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.wav")
	if err := os.WriteFile(path, []byte("RIFFdata"), 0o644); err != nil {
		t.Fatal(err)
	}
	tr := &stallingTranscriber{text: "see you soon", started: make(chan struct{})}
	src := NewLineSource(strings.NewReader("@"+path+"\nnext\n"), tr)

	if err := src.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	<-tr.started
	src.Stop()

	for _, want := range []string{"see you soon", "next"} {
		res, err := Capture(context.Background(), src)
		if err != nil {
			t.Fatalf("Capture: %v", err)
		}
		if res.Text != want {
			t.Errorf("Text = %q, want %q", res.Text, want)
		}
	}
	if got := tr.calls.Load(); got != 2 {
		t.Errorf("transcriber calls = %d, want 2", got)
	}
}

func TestLineSource_AudioFileLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "answer.wav")
	if err := os.WriteFile(path, []byte("RIFFdata"), 0o644); err != nil {
		t.Fatal(err)
	}
	tr := &fakeTranscriber{text: "I would like a coffee"}
	src := NewLineSource(strings.NewReader("@"+path+"\n"), tr)

	res, err := Capture(context.Background(), src)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if res.Text != "I would like a coffee" {
		t.Errorf("Text = %q", res.Text)
	}
	if string(res.Audio) != "RIFFdata" || res.MIMEType != "audio/wav" {
		t.Errorf("audio = %q (%s)", res.Audio, res.MIMEType)
	}
	if tr.mime != "audio/wav" || string(tr.got) != "RIFFdata" {
		t.Errorf("transcriber got %q (%s)", tr.got, tr.mime)
	}
	sig := res.Signal()
	if !sig.HasAudio() || sig.Transcript != res.Text {
		t.Errorf("Signal() = %+v", sig)
	}
}

func TestFileSource_Errors(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.wav"), nil)
	if _, err := Capture(context.Background(), src); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "a.webm")
	os.WriteFile(path, []byte{1}, 0o644)
	src = NewFileSource(path, &fakeTranscriber{err: errors.New("speech down")})
	_, err := Capture(context.Background(), src)
	if err == nil || !strings.Contains(err.Error(), "speech down") {
		t.Errorf("Capture = %v, want transcriber error", err)
	}
}

func TestFileSource_NoTranscriberKeepsAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ogg")
	os.WriteFile(path, []byte{7, 7}, 0o644)

	res, err := Capture(context.Background(), NewFileSource(path, nil))
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if res.Text != "" || len(res.Audio) != 2 || res.MIMEType != "audio/ogg" {
		t.Errorf("res = %+v", res)
	}
}

func TestStartTwice(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	defer r.Close()

	src := NewLineSource(r, nil)
	if err := src.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := src.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}
	src.Stop()
}

func TestCapture_ContextCancelled(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var called bool
	src := NewLineSource(r, nil)
	_, err = Capture(ctx, src)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Capture = %v, want deadline exceeded", err)
	}

	// A line arriving after a cancelled capture goes to the next one.
	src.OnResult(func(Result) { called = true })
	w.Write([]byte("late\n"))
	time.Sleep(20 * time.Millisecond)
	if called {
		t.Error("result delivered while no capture was running")
	}

	res, err := Capture(context.Background(), src)
	if err != nil || res.Text != "late" {
		t.Errorf("next Capture = (%+v, %v), want late", res, err)
	}
}

func TestResolve(t *testing.T) {
	res, err := Resolve(context.Background(), "  plain answer ", nil)
	if err != nil || res.Text != "  plain answer " {
		t.Errorf("Resolve(plain) = (%+v, %v)", res, err)
	}
	res, err = Resolve(context.Background(), "@", nil)
	if err != nil || res.Text != "@" {
		t.Errorf("Resolve(@) = (%+v, %v)", res, err)
	}
}
