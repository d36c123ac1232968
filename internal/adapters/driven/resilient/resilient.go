// Package resilient provides retrying decorators for provider ports.
//
// Only errors classified by domain.IsRetryable are retried; everything else
// is returned after the first attempt. Retries use exponential backoff
// bounded by a retry count and a total elapsed time, and stop as soon as the
// caller's context is done.
package resilient

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

// DefaultInitialInterval is the first backoff delay.
const DefaultInitialInterval = 500 * time.Millisecond

// Policy bounds retries for one decorated call.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// MaxElapsed caps the total time spent in one call including retries.
	// Zero means no cap beyond MaxRetries.
	MaxElapsed time.Duration

	// InitialInterval is the first backoff delay (default: 500ms).
	InitialInterval time.Duration
}

// PolicyFromSettings builds a policy from resilience settings.
func PolicyFromSettings(s domain.ResilienceSettings) Policy {
	return Policy{MaxRetries: s.MaxRetries, MaxElapsed: s.MaxElapsed}
}

func (p Policy) backoff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	if exp.InitialInterval <= 0 {
		exp.InitialInterval = DefaultInitialInterval
	}
	exp.MaxElapsedTime = p.MaxElapsed

	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}

// do runs fn under the policy. Non-retryable errors stop immediately.
func do(ctx context.Context, p Policy, op string, fn func() error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !domain.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("%s failed (attempt %d), retrying in %s: %v", op, attempt, wait.Round(time.Millisecond), err)
	}
	return backoff.RetryNotify(operation, p.backoff(ctx), notify)
}

// doValue is do for operations returning a value.
func doValue[T any](ctx context.Context, p Policy, op string, fn func() (T, error)) (T, error) {
	var out T
	err := do(ctx, p, op, func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
