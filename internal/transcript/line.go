package transcript

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// LineSource captures typed answers, one line per Start. Lines starting
// with "@" are treated as audio file paths. A single reader goroutine
// owns r. A line taken by a capture that is stopped before it could
// report is held for the next capture.
type LineSource struct {
	callbacks
	transcriber Transcriber

	r     io.Reader
	once  sync.Once
	lines chan string
	err   error // set before lines is closed

	// turn is held by the capture that owns the next line; held is only
	// touched while holding it.
	turn chan struct{}
	held *string
}

var _ Source = (*LineSource)(nil)

// NewLineSource reads answers from r. tr may be nil when audio files are
// not supported.
func NewLineSource(r io.Reader, tr Transcriber) *LineSource {
	return &LineSource{r: r, transcriber: tr, lines: make(chan string), turn: make(chan struct{}, 1)}
}

func (s *LineSource) Start(ctx context.Context) error {
	ctx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	s.once.Do(func() { go s.readLoop() })

	go func() {
		select {
		case s.turn <- struct{}{}:
		case <-ctx.Done():
			return
		}
		defer func() { <-s.turn }()

		line, ok := s.next(ctx)
		if !ok {
			return
		}
		res, err := Resolve(ctx, line, s.transcriber)
		if !s.deliver(res, err) {
			s.held = &line
		}
	}()
	return nil
}

// next returns the held line, or waits for a fresh one. End of input is
// delivered here.
func (s *LineSource) next(ctx context.Context) (string, bool) {
	if s.held != nil {
		line := *s.held
		s.held = nil
		return line, true
	}
	select {
	case line, ok := <-s.lines:
		if !ok {
			s.deliver(Result{}, s.err)
		}
		return line, ok
	case <-ctx.Done():
		return "", false
	}
}

func (s *LineSource) readLoop() {
	sc := bufio.NewScanner(s.r)
	for sc.Scan() {
		s.lines <- strings.TrimRight(sc.Text(), "\r")
	}
	s.err = sc.Err()
	if s.err == nil {
		s.err = ErrEndOfInput
	}
	close(s.lines)
}
