package errors

import (
	"context"
	"time"
)

// ReadRetryPolicy governs retries of idempotent ledger reads. Submissions
// never go through it.
type ReadRetryPolicy struct {
	Attempts   int
	Backoff    time.Duration
	MaxBackoff time.Duration
	// OnRetry, if set, is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultReadRetryPolicy retries three times starting at 500ms.
func DefaultReadRetryPolicy() ReadRetryPolicy {
	return ReadRetryPolicy{
		Attempts:   3,
		Backoff:    500 * time.Millisecond,
		MaxBackoff: 10 * time.Second,
	}
}

// RetryRead calls read until it succeeds, fails with an error that is not
// transient, or the attempts run out.
func RetryRead(ctx context.Context, policy ReadRetryPolicy, read func() error) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = read()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) || attempt == attempts {
			break
		}

		wait := backoff(attempt, policy.Backoff, policy.MaxBackoff)
		if policy.OnRetry != nil {
			policy.OnRetry(attempt, lastErr, wait)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	if !IsRetryable(lastErr) {
		return lastErr
	}
	return WrapCandyError(lastErr, ErrCodeRPC, "", "ledger read kept failing").
		WithContext("attempts", attempts)
}

// backoff doubles base for every attempt after the first, capped at limit.
func backoff(attempt int, base, limit time.Duration) time.Duration {
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if limit > 0 && delay >= limit {
			return limit
		}
	}
	return delay
}
