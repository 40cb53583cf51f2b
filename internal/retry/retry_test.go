package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetryEventualSuccess(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), RetryConfig{MaxAttempts: 3, Delay: time.Millisecond}, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetryExhausted(t *testing.T) {
	calls := 0
	sentinel := errors.New("still down")
	err := WithRetry(context.Background(), RetryConfig{MaxAttempts: 2, Delay: time.Millisecond}, func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("lost the underlying error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestWithRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := WithRetry(ctx, RetryConfig{MaxAttempts: 5, Delay: time.Minute}, func() error {
		calls++
		return errors.New("x")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 before honoring cancellation", calls)
	}
}

func TestWithRetryZeroAttempts(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), RetryConfig{}, func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}
}
