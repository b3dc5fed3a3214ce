package transcript

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abhisek/fluentz/internal/speech"
)

// FilePrefix marks typed input that names an audio file to transcribe,
// as in "@answer.wav".
const FilePrefix = "@"

// FileSource captures an answer from a recorded audio file. The file is
// read on Start and sent to the Transcriber; the audio is kept on the
// result for emotion labelling.
type FileSource struct {
	callbacks
	path        string
	transcriber Transcriber
}

var _ Source = (*FileSource)(nil)

// NewFileSource creates a source for the audio file at path.
func NewFileSource(path string, tr Transcriber) *FileSource {
	return &FileSource{path: path, transcriber: tr}
}

func (s *FileSource) Start(ctx context.Context) error {
	ctx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	go func() {
		res, err := LoadAudio(ctx, s.path, s.transcriber)
		s.deliver(res, err)
	}()
	return nil
}

// LoadAudio reads and transcribes an audio file. A nil Transcriber yields
// a result with audio but no text.
func LoadAudio(ctx context.Context, path string, tr Transcriber) (Result, error) {
	path = expandHome(path)
	audio, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read audio %s: %w", path, err)
	}
	res := Result{Audio: audio, MIMEType: speech.MIMEType(path)}
	if tr == nil {
		return res, nil
	}
	text, err := tr.Transcribe(ctx, audio, res.MIMEType)
	if err != nil {
		return Result{}, fmt.Errorf("transcribe %s: %w", filepath.Base(path), err)
	}
	res.Text = text
	return res, nil
}

// Resolve turns one line of user input into a Result: "@path" loads and
// transcribes the file, anything else is the typed answer as-is.
func Resolve(ctx context.Context, input string, tr Transcriber) (Result, error) {
	trimmed := strings.TrimSpace(input)
	if path, ok := strings.CutPrefix(trimmed, FilePrefix); ok && path != "" {
		return LoadAudio(ctx, path, tr)
	}
	return Result{Text: input}, nil
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
