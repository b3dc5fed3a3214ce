package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     300 * time.Millisecond,
		Multiplier:  2.0,
	}
}

// newTestRetry returns a retrying provider that records waits instead of
// sleeping.
func newTestRetry(inner Provider, cfg RetryConfig) (*RetryProvider, *[]time.Duration) {
	var waits []time.Duration
	r := WithRetry(inner, cfg, quietLogger()).(*RetryProvider)
	r.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return r, &waits
}

var labelOK = MockReply{Content: json.RawMessage(`{"label":"Positive"}`)}

func TestRetry_Attempts(t *testing.T) {
	down := MockReply{Err: &ErrProviderUnavailable{Err: errors.New("503")}}
	malformed := MockReply{Err: &ErrInvalidResponse{Schema: "emotion-label", Err: errors.New("missing label")}}

	tests := []struct {
		name      string
		replies   []MockReply
		wantCalls int
		wantErr   any
	}{
		{"first attempt", []MockReply{labelOK}, 1, nil},
		{"recovers after outage", []MockReply{down, labelOK}, 2, nil},
		{"gives up after max attempts", []MockReply{down, down, down, labelOK}, 3, &ErrProviderUnavailable{}},
		{"malformed answer retried once", []MockReply{malformed, malformed, labelOK}, 2, &ErrInvalidResponse{}},
		{"truncation is final", []MockReply{{Err: &ErrMaxTokensExceeded{}}, labelOK}, 1, &ErrMaxTokensExceeded{}},
		{"rejection is final", []MockReply{{Err: &ErrRequestRejected{Status: 401, Err: errors.New("bad key")}}, labelOK}, 1, &ErrRequestRejected{}},
		{"plain network error is transient", []MockReply{{Err: errors.New("connection reset")}, labelOK}, 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.replies...)
			p, _ := newTestRetry(mock, retryConfig())

			_, err := p.Generate(context.Background(), Request{})
			if got := mock.CallCount(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
			switch want := tt.wantErr.(type) {
			case nil:
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			case *ErrProviderUnavailable:
				if !errors.As(err, &want) {
					t.Errorf("err = %v, want ErrProviderUnavailable", err)
				}
			case *ErrInvalidResponse:
				if !errors.As(err, &want) {
					t.Errorf("err = %v, want ErrInvalidResponse", err)
				}
			case *ErrMaxTokensExceeded:
				if !errors.As(err, &want) {
					t.Errorf("err = %v, want ErrMaxTokensExceeded", err)
				}
			case *ErrRequestRejected:
				if !errors.As(err, &want) {
					t.Errorf("err = %v, want ErrRequestRejected", err)
				}
			}
		})
	}
}

func TestRetry_BackoffGrowsAndCaps(t *testing.T) {
	down := MockReply{Err: &ErrProviderUnavailable{}}
	cfg := retryConfig()
	cfg.MaxAttempts = 4
	p, waits := newTestRetry(NewMockProvider(down, down, down, down), cfg)

	_, _ = p.Generate(context.Background(), Request{})

	if len(*waits) != 3 {
		t.Fatalf("waits = %v, want 3 (none after the last attempt)", *waits)
	}
	bounds := [][2]time.Duration{
		{80 * time.Millisecond, 120 * time.Millisecond},
		{160 * time.Millisecond, 240 * time.Millisecond},
		{240 * time.Millisecond, 360 * time.Millisecond}, // capped at 300ms ±20%
	}
	for i, w := range *waits {
		if w < bounds[i][0] || w > bounds[i][1] {
			t.Errorf("wait[%d] = %v, want within %v", i, w, bounds[i])
		}
	}
}

func TestRetry_RespectsRetryAfter(t *testing.T) {
	limited := MockReply{Err: &ErrRateLimit{RetryAfter: 2 * time.Second, Err: errors.New("429")}}
	p, waits := newTestRetry(NewMockProvider(limited, labelOK), retryConfig())

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*waits) != 1 || (*waits)[0] != 2*time.Second {
		t.Fatalf("waits = %v, want [2s]", *waits)
	}
}

func TestRetry_StopsOnCancelledContext(t *testing.T) {
	mock := NewMockProvider(MockReply{Err: &ErrProviderUnavailable{}}, labelOK)
	p, _ := newTestRetry(mock, retryConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetry_ZeroAttemptsMeansOne(t *testing.T) {
	mock := NewMockProvider(MockReply{Err: &ErrProviderUnavailable{}}, labelOK)
	p, _ := newTestRetry(mock, RetryConfig{})

	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected the single attempt's error")
	}
	if mock.CallCount() != 1 {
		t.Fatalf("calls = %d, want 1", mock.CallCount())
	}
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowProvider) ModelID() string { return "slow" }

func TestTimeout_BoundsCall(t *testing.T) {
	p := WithTimeout(slowProvider{}, 20*time.Millisecond)

	start := time.Now()
	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("call took %v", elapsed)
	}
	if WithTimeout(slowProvider{}, 0) != (slowProvider{}) {
		t.Fatal("zero timeout should return the provider unchanged")
	}
}
