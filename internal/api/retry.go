package api

import (
	"context"
	"time"

	"github.com/quocvuong92/gemini-chat/internal/constants"
)

// BackoffMultiplier is the default growth factor between retry delays
const BackoffMultiplier = 2.0

// RetryPolicy wraps a remote call with classification-driven retry and
// exponential backoff. Network and rate-limit failures are retried; every
// other kind fails on first occurrence.
type RetryPolicy struct {
	// MaxAttempts is the total number of calls, including the first
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration

	// Timeout bounds each attempt. Zero means no per-attempt deadline.
	Timeout time.Duration

	// OnRetry is called before sleeping ahead of the next attempt.
	// attempt is the 1-based number of the attempt that just failed.
	OnRetry func(attempt int, kind Kind, delay time.Duration, err error)

	// Sleep waits for d or until ctx is done. Defaults to a timer select.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns the policy used when no tunables are configured
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: constants.DefaultRetryAttempts,
		BaseDelay:   constants.DefaultRetryBaseDelay,
		Multiplier:  BackoffMultiplier,
		MaxDelay:    constants.DefaultRetryMaxDelay,
		Timeout:     constants.DefaultAPITimeout,
	}
}

// CalculateBackoff returns the delay after the given 0-based failed attempt:
// BaseDelay × Multiplier^attempt, capped at MaxDelay.
func (p RetryPolicy) CalculateBackoff(attempt int) time.Duration {
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = BackoffMultiplier
	}
	backoff := p.BaseDelay
	for i := 0; i < attempt; i++ {
		backoff = time.Duration(float64(backoff) * multiplier)
		if p.MaxDelay > 0 && backoff > p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && backoff > p.MaxDelay {
		return p.MaxDelay
	}
	return backoff
}

// Invoke runs fn until it succeeds, fails with a non-retryable kind, or
// MaxAttempts is reached. Every failure is returned as *Error carrying the
// last classified kind and the number of attempts made.
func (p RetryPolicy) Invoke(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	var lastKind Kind

	for attempt := 0; attempt < attempts; attempt++ {
		// Check for context cancellation
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			return "", &Error{Kind: KindNetwork, Attempts: attempt, Err: lastErr}
		}

		result, err := p.call(ctx, fn)
		if err == nil {
			return result, nil
		}
		lastErr = err
		lastKind = Classify(err)

		// Parent cancellation stops retrying regardless of kind
		if ctx.Err() != nil {
			return "", &Error{Kind: KindNetwork, Attempts: attempt + 1, Err: err}
		}

		if !lastKind.Retryable() {
			return "", &Error{Kind: lastKind, Attempts: attempt + 1, Err: err}
		}

		// Apply backoff before retry (except for last attempt)
		if attempt < attempts-1 {
			delay := p.CalculateBackoff(attempt)
			if p.OnRetry != nil {
				p.OnRetry(attempt+1, lastKind, delay, err)
			}
			if err := sleep(ctx, delay); err != nil {
				return "", &Error{Kind: KindNetwork, Attempts: attempt + 1, Err: err}
			}
		}
	}

	return "", &Error{Kind: lastKind, Attempts: attempts, Err: lastErr}
}

// call runs one attempt under the per-attempt deadline
func (p RetryPolicy) call(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	if p.Timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	return fn(attemptCtx)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
