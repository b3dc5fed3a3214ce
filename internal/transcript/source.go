// Package transcript turns user input into answer transcripts. A Source
// is a pluggable capture device: typed lines, recorded audio files, or
// anything else that can report a result or an error.
package transcript

import (
	"context"
	"errors"
	"sync"

	"github.com/abhisek/fluentz/internal/emotion"
)

// ErrAlreadyStarted is returned by Start while a capture is in progress.
var ErrAlreadyStarted = errors.New("transcript: capture already started")

// ErrEndOfInput is reported when a source has no more input to capture.
var ErrEndOfInput = errors.New("transcript: end of input")

// Result is one captured answer. Audio is set when the answer was
// recorded rather than typed.
type Result struct {
	Text     string
	Audio    []byte
	MIMEType string
}

// Signal converts the result into an emotion service input.
func (r Result) Signal() emotion.Signal {
	return emotion.Signal{Audio: r.Audio, MIMEType: r.MIMEType, Transcript: r.Text}
}

// Source captures a single answer per Start. Callbacks must be registered
// before Start and may be invoked from another goroutine. After Stop no
// further callbacks fire.
type Source interface {
	Start(ctx context.Context) error
	Stop() error
	OnResult(func(Result))
	OnError(func(error))
}

// Transcriber converts recorded audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// callbacks holds registered handlers and the running state shared by the
// sources in this package.
type callbacks struct {
	mu       sync.Mutex
	onResult func(Result)
	onError  func(error)
	running  bool
	cancel   context.CancelFunc
}

func (c *callbacks) OnResult(fn func(Result)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onResult = fn
}

func (c *callbacks) OnError(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = fn
}

// begin marks the source running and returns a context cancelled by Stop.
func (c *callbacks) begin(ctx context.Context) (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil, ErrAlreadyStarted
	}
	c.running = true
	ctx, c.cancel = context.WithCancel(ctx)
	return ctx, nil
}

func (c *callbacks) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.running = false
	return nil
}

// deliver reports the outcome of one capture unless the source was
// stopped in the meantime. It returns false when nothing was reported.
func (c *callbacks) deliver(res Result, err error) bool {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return false
	}
	c.running = false
	onResult, onError := c.onResult, c.onError
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()

	switch {
	case err != nil && onError != nil:
		onError(err)
	case err == nil && onResult != nil:
		onResult(res)
	}
	return true
}

// Capture runs one capture on src and waits for its result, its error or
// ctx to end. The source is stopped before Capture returns.
func Capture(ctx context.Context, src Source) (Result, error) {
	results := make(chan Result, 1)
	errs := make(chan error, 1)
	src.OnResult(func(r Result) { results <- r })
	src.OnError(func(err error) { errs <- err })

	if err := src.Start(ctx); err != nil {
		return Result{}, err
	}
	defer src.Stop()

	select {
	case r := <-results:
		return r, nil
	case err := <-errs:
		return Result{}, err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
