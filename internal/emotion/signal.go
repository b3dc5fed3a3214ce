package emotion

import (
	"context"
	"log/slog"
	"time"
)

// Signal is the out-of-band input for an external emotion service.
// Audio may be empty when only a typed transcript is available.
type Signal struct {
	Audio      []byte
	MIMEType   string
	Transcript string
}

// HasAudio reports whether the signal carries an audio payload.
func (s Signal) HasAudio() bool {
	return len(s.Audio) > 0
}

// SignalService returns an emotion label for a signal, for example
// "Positive". Failures are expected and must not abort an answer.
type SignalService interface {
	Label(ctx context.Context, sig Signal) (string, error)
}

// Resolve asks svc for a label, bounded by timeout. It returns ok=false
// when svc is nil, the call fails, or the deadline passes.
func Resolve(ctx context.Context, svc SignalService, sig Signal, timeout time.Duration) (label string, ok bool) {
	if svc == nil {
		return "", false
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	label, err := svc.Label(ctx, sig)
	if err != nil {
		slog.WarnContext(ctx, "emotion service unavailable, falling back to text", "error", err)
		return "", false
	}
	return label, true
}
