package integrations

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy controls how many times a GET is attempted. A zero policy
// makes a single attempt.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration // doubled after each failed attempt
}

// retryable reports whether err is worth another attempt. Missing
// resources and undecodable bodies will not change on a second try.
func retryable(err error) bool {
	return errors.Is(err, ErrNetwork) && !errors.Is(err, ErrNotFound)
}

// retry runs fn until it succeeds, returns a permanent error, or the
// policy is exhausted. The last error is returned, or ctx.Err() if the
// context ends while waiting.
func retry(ctx context.Context, p RetryPolicy, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	var lastErr error
	for i := range attempts {
		if lastErr = fn(); lastErr == nil || !retryable(lastErr) {
			return lastErr
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return lastErr
}
