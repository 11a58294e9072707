// Package pacing spaces out calls to rate-limited collaborators.
package pacing

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"NewsPulse/internal/ports"
)

// Interval is a minimum-interval gate: the first Wait returns immediately,
// every following Wait returns no sooner than interval after the previous one.
type Interval struct {
	limiter *rate.Limiter
}

var _ ports.Pacer = (*Interval)(nil)

// NewInterval builds a gate. A non-positive interval disables pacing.
func NewInterval(interval time.Duration) *Interval {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Interval{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the next call is allowed or ctx is done.
func (p *Interval) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// None never waits.
type None struct{}

var _ ports.Pacer = None{}

// Wait returns ctx.Err() without blocking.
func (None) Wait(ctx context.Context) error {
	return ctx.Err()
}
