package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
)

func fastRetryPolicy(maxAttempts int) *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:       maxAttempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestRetryPolicy_SucceedsAfterTransientFailures(t *testing.T) {
	logger := arbor.NewLogger()
	policy := fastRetryPolicy(3)

	attempts := 0
	err := policy.ExecuteWithRetry(context.Background(), logger, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("page load error net::ERR_CONNECTION_RESET")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Expected success after transient failures, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryPolicy_ExhaustsAttempts(t *testing.T) {
	logger := arbor.NewLogger()
	policy := fastRetryPolicy(3)

	attempts := 0
	wantErr := errors.New("page load error net::ERR_NAME_NOT_RESOLVED")
	err := policy.ExecuteWithRetry(context.Background(), logger, func() error {
		attempts++
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Fatalf("Expected last error to surface, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryPolicy_CancelledErrorShortCircuits(t *testing.T) {
	logger := arbor.NewLogger()
	policy := fastRetryPolicy(5)

	attempts := 0
	err := policy.ExecuteWithRetry(context.Background(), logger, func() error {
		attempts++
		return context.Canceled
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Cancellation should not be retried, got %d attempts", attempts)
	}
}

func TestRetryPolicy_ContextCancellationStopsBackoff(t *testing.T) {
	logger := arbor.NewLogger()
	policy := &RetryPolicy{
		MaxAttempts:       5,
		InitialBackoff:    time.Minute,
		MaxBackoff:        time.Minute,
		BackoffMultiplier: 2.0,
	}

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	start := time.Now()
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := policy.ExecuteWithRetry(ctx, logger, func() error {
		attempts++
		return errors.New("transient")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled from backoff wait, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt before cancellation, got %d", attempts)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Backoff wait ignored cancellation, took %v", elapsed)
	}
}

func TestRetryPolicy_CalculateBackoffBounds(t *testing.T) {
	policy := NewRetryPolicy(3)

	for attempt := 0; attempt < 10; attempt++ {
		expected := float64(policy.InitialBackoff) * pow(policy.BackoffMultiplier, float64(attempt))
		if expected > float64(policy.MaxBackoff) {
			expected = float64(policy.MaxBackoff)
		}

		backoff := policy.CalculateBackoff(attempt)
		if backoff < 0 {
			t.Errorf("Attempt %d: backoff must never be negative, got %v", attempt, backoff)
		}
		if float64(backoff) < expected*0.74 || float64(backoff) > expected*1.26 {
			t.Errorf("Attempt %d: backoff %v outside jitter bounds of %v", attempt, backoff, time.Duration(expected))
		}
	}
}

func TestRetryPolicy_ShouldRetry(t *testing.T) {
	policy := NewRetryPolicy(3)

	tests := []struct {
		name    string
		attempt int
		err     error
		want    bool
	}{
		{"nil error never retried", 0, nil, false},
		{"transient error retried", 0, errors.New("boom"), true},
		{"attempt cap respected", 3, errors.New("boom"), false},
		{"cancellation not retried", 0, context.Canceled, false},
		{"deadline exceeded retried", 1, context.DeadlineExceeded, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.ShouldRetry(tt.attempt, tt.err); got != tt.want {
				t.Errorf("ShouldRetry(%d, %v) = %v, want %v", tt.attempt, tt.err, got, tt.want)
			}
		})
	}
}

func TestNewRetryPolicy_ClampsAttempts(t *testing.T) {
	if got := NewRetryPolicy(0).MaxAttempts; got != 1 {
		t.Errorf("Expected attempt floor of 1, got %d", got)
	}
	if got := NewRetryPolicy(4).MaxAttempts; got != 4 {
		t.Errorf("Expected 4 attempts, got %d", got)
	}
}
