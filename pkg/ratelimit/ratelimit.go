// Package ratelimit paces repeated operations to a fixed rate, used by the
// crawler to enforce its per-request politeness delay.
package ratelimit

import (
	"context"
	"time"
)

// Limiter releases callers on the ticks of a fixed-interval ticker started
// by NewLimiter; each Wait consumes one tick. A tick that arrives while no
// caller is waiting is held (at most one), so a Wait that follows a long
// gap returns at once: intervals are measured on the ticker's schedule, not
// from the previous call. It is safe for concurrent use by multiple
// goroutines.
type Limiter struct {
	ticker *time.Ticker
	ch     <-chan time.Time
}

// NewLimiter creates a Limiter that permits rps operations per second.
// If rps is <= 0, the limiter never blocks.
func NewLimiter(rps float64) *Limiter {
	if rps <= 0 {
		return &Limiter{}
	}

	interval := time.Duration(float64(time.Second) / rps)
	ticker := time.NewTicker(interval)

	return &Limiter{
		ticker: ticker,
		ch:     ticker.C,
	}
}

// Wait blocks until it is time to perform the next operation, or until the
// context is canceled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.ch == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.ch:
	}
	return nil
}

// Stop releases any resources associated with the limiter.
func (l *Limiter) Stop() {
	if l.ticker != nil {
		l.ticker.Stop()
	}
}
