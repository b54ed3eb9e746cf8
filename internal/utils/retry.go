// internal/utils/retry.go
package utils

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryPolicy describes retry-with-exponential-backoff behavior for a
// fallible external call. The same policy wraps both the document fetch
// collaborator and the classification collaborator.
type RetryPolicy struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	Multiplier  float64       `yaml:"multiplier" json:"multiplier"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
}

// DefaultRetryPolicy returns the policy used when the configuration does
// not override it: 3 attempts, 1s base delay doubling up to 30s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2.0,
		MaxDelay:    30 * time.Second,
	}
}

type permanentError struct {
	err error
}

func (p permanentError) Error() string { return p.err.Error() }
func (p permanentError) Unwrap() error { return p.err }

// Permanent wraps err so that Do stops retrying and returns it as-is.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// Do invokes op until it succeeds, returns a permanent error, the context
// is cancelled, or MaxAttempts is exhausted.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op()
		if err == nil {
			return nil
		}

		var perm permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay(attempt)):
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}

// Delay returns the backoff delay after the given 1-based attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	mult := p.Multiplier
	if mult <= 1 {
		mult = 2.0
	}

	d := base
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * mult)
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}
