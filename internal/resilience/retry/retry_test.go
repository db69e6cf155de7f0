package retry

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithBackoff_Success(t *testing.T) {
	attempts := 0
	fn := func() error {
		attempts++
		return nil // Success on first attempt
	}

	err := WithBackoff(context.Background(), testConfig(), fn)

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestWithBackoff_SuccessAfterRetry(t *testing.T) {
	attempts := 0
	fn := func() error {
		attempts++
		if attempts < 3 {
			return syscall.ECONNREFUSED
		}
		return nil // Success on 3rd attempt
	}

	err := WithBackoff(context.Background(), testConfig(), fn)

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithBackoff_BackoffDoubles(t *testing.T) {
	attempts := 0
	var gaps []time.Duration
	last := time.Now()
	fn := func() error {
		now := time.Now()
		if attempts > 0 {
			gaps = append(gaps, now.Sub(last))
		}
		last = now
		attempts++
		if attempts < 3 {
			return syscall.ETIMEDOUT
		}
		return nil
	}

	if err := WithBackoff(context.Background(), testConfig(), fn); err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if len(gaps) != 2 {
		t.Fatalf("expected 2 waits, got %d", len(gaps))
	}
	if gaps[0] < 10*time.Millisecond || gaps[0] > 18*time.Millisecond {
		t.Errorf("first wait = %v, want ~10ms", gaps[0])
	}
	if gaps[1] < 20*time.Millisecond || gaps[1] > 35*time.Millisecond {
		t.Errorf("second wait = %v, want ~20ms", gaps[1])
	}
	if gaps[1] < gaps[0] {
		t.Errorf("second wait %v should exceed first wait %v", gaps[1], gaps[0])
	}
}

func TestWithBackoff_MaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	testErr := &HTTPError{StatusCode: 500, Message: "Server Error"}
	fn := func() error {
		attempts++
		return testErr // Always fail
	}

	err := WithBackoff(context.Background(), testConfig(), fn)

	if err == nil {
		t.Error("expected error, got nil")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if !errors.Is(err, testErr) {
		t.Errorf("expected wrapped error to contain original error")
	}
}

func TestWithBackoff_NonRetryableError(t *testing.T) {
	attempts := 0
	testErr := &HTTPError{StatusCode: 401, Message: "Unauthorized"}
	fn := func() error {
		attempts++
		return testErr
	}

	err := WithBackoff(context.Background(), testConfig(), fn)

	if err == nil {
		t.Error("expected error, got nil")
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt for non-retryable error, got %d", attempts)
	}
}

func TestWithBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	fn := func() error {
		attempts++
		if attempts == 1 {
			cancel()
		}
		return syscall.ECONNRESET
	}

	err := WithBackoff(ctx, testConfig(), fn)

	if err == nil {
		t.Error("expected error, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"timed out", syscall.ETIMEDOUT, true},
		{"network unreachable", syscall.ENETUNREACH, true},
		{"http 500", &HTTPError{StatusCode: 500, Message: "oops"}, true},
		{"http 429", &HTTPError{StatusCode: 429, Message: "slow down"}, true},
		{"http 408", &HTTPError{StatusCode: 408, Message: "timeout"}, true},
		{"http 401", &HTTPError{StatusCode: 401, Message: "unauthorized"}, false},
		{"http 400", &HTTPError{StatusCode: 400, Message: "bad request"}, false},
		{"plain error", errors.New("malformed response"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRelayConfig(t *testing.T) {
	cfg := RelayConfig()
	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.InitialDelay != 1*time.Second {
		t.Errorf("InitialDelay = %v, want 1s", cfg.InitialDelay)
	}
	if cfg.Multiplier != 2.0 {
		t.Errorf("Multiplier = %v, want 2.0", cfg.Multiplier)
	}
	if cfg.JitterFraction != 0 {
		t.Errorf("JitterFraction = %v, want 0 for deterministic waits", cfg.JitterFraction)
	}
}
