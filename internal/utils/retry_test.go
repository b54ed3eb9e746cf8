// internal/utils/retry_test.go
package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicy_Do_SucceedsAfterFailures(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2.0}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryPolicy_Do_ExhaustsAttempts(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return errors.New("still failing")
	})

	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestRetryPolicy_Do_PermanentStopsRetrying(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond}

	sentinel := errors.New("not found")
	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return Permanent(sentinel)
	})

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("permanent error should not be retried, got %d calls", calls)
	}
}

func TestRetryPolicy_Do_ContextCancelled(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 10, BaseDelay: 50 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := policy.Do(ctx, func() error {
		calls++
		return errors.New("transient")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls >= 10 {
		t.Fatalf("cancellation should stop retries early, got %d calls", calls)
	}
}

func TestRetryPolicy_Delay_Backoff(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Second, Multiplier: 2.0, MaxDelay: 5 * time.Second}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 5 * time.Second},
	}

	for _, tc := range cases {
		if got := policy.Delay(tc.attempt); got != tc.want {
			t.Fatalf("attempt %d: expected %v, got %v", tc.attempt, tc.want, got)
		}
	}
}
