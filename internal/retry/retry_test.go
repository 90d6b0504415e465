package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient")

func isTransient(err error) bool { return errors.Is(err, errTransient) }

func TestDo(t *testing.T) {
	permanent := errors.New("permanent")

	tests := []struct {
		name      string
		failures  []error // returned by successive calls; nil afterwards
		wantCalls int
		wantErr   error
	}{
		{name: "first-attempt-succeeds", wantCalls: 1},
		{name: "recovers-after-one", failures: []error{errTransient}, wantCalls: 2},
		{name: "recovers-after-three", failures: []error{errTransient, errTransient, errTransient}, wantCalls: 4},
		{
			name:      "exhausted",
			failures:  []error{errTransient, errTransient, errTransient, errTransient, errTransient},
			wantCalls: 4,
			wantErr:   errTransient,
		},
		{name: "not-retryable", failures: []error{permanent}, wantCalls: 1, wantErr: permanent},
		{
			name:      "stops-on-permanent-after-transient",
			failures:  []error{errTransient, permanent},
			wantCalls: 2,
			wantErr:   permanent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			p := Policy{MaxRetries: DefaultMaxRetries, ShouldRetry: isTransient, Backoff: Constant(0)}
			err := Do(context.Background(), p, func(context.Context) error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls: got %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("error: got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDoReportsRetries(t *testing.T) {
	var attempts []int
	p := Policy{
		MaxRetries:  2,
		ShouldRetry: isTransient,
		Backoff:     Constant(0),
		OnRetry: func(attempt int, _ time.Duration, _ error) {
			attempts = append(attempts, attempt)
		},
	}
	_ = Do(context.Background(), p, func(context.Context) error { return errTransient })

	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Fatalf("OnRetry attempts: got %v, want [1 2]", attempts)
	}
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	p := Policy{MaxRetries: 3, ShouldRetry: isTransient, Backoff: Constant(time.Hour)}

	go cancel()
	err := Do(ctx, p, func(context.Context) error {
		calls++
		return errTransient
	})

	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error: got %v, want context.Canceled", err)
	}
	if !errors.Is(err, errTransient) {
		t.Errorf("error should keep the last attempt's cause, got %v", err)
	}
}

type hintErr struct{ d time.Duration }

func (e hintErr) Error() string             { return "rate limited" }
func (e hintErr) RetryAfter() time.Duration { return e.d }

func TestExponential(t *testing.T) {
	b := Exponential(100*time.Millisecond, time.Second)

	tests := []struct {
		attempt int
		err     error
		want    time.Duration
	}{
		{1, errTransient, 100 * time.Millisecond},
		{2, errTransient, 200 * time.Millisecond},
		{3, errTransient, 400 * time.Millisecond},
		{5, errTransient, time.Second},
		{1, hintErr{d: 300 * time.Millisecond}, 300 * time.Millisecond},
		{3, hintErr{d: 50 * time.Millisecond}, 400 * time.Millisecond},
		{1, hintErr{d: time.Minute}, time.Second},
	}
	for _, tt := range tests {
		if got := b(tt.attempt, tt.err); got != tt.want {
			t.Errorf("Exponential(%d, %v) = %v, want %v", tt.attempt, tt.err, got, tt.want)
		}
	}
}
