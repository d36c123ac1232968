// Package pacing spaces out provider calls during batch ingestion.
package pacing

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
)

var (
	_ driven.Pacer = (*Limiter)(nil)
	_ driven.Pacer = noPacer{}
)

// Limiter allows one call per interval. The first call proceeds immediately.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter returns a pacer allowing one call every interval.
// A non-positive interval disables pacing.
func NewLimiter(interval time.Duration) driven.Pacer {
	if interval <= 0 {
		return None()
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next call may be issued or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

type noPacer struct{}

// None returns a pacer that never waits but still honours cancellation.
func None() driven.Pacer {
	return noPacer{}
}

func (noPacer) Wait(ctx context.Context) error {
	return ctx.Err()
}
