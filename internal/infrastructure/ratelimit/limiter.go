package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a blocking sliding-window rate limiter: at most limit calls per
// window, shared across goroutines. Callers block in Wait until a slot frees
// up or their context ends.
type Limiter struct {
	limit  int
	window time.Duration

	mu     sync.Mutex
	stamps []time.Time
}

// New creates a Limiter allowing limit calls per window.
func New(limit int, window time.Duration) *Limiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &Limiter{limit: limit, window: window}
}

// Wait blocks until the caller may proceed. Returns the context's error if it
// ends first.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := time.Now()
		l.prune(now)
		if len(l.stamps) < l.limit {
			l.stamps = append(l.stamps, now)
			l.mu.Unlock()
			return nil
		}
		wait := l.stamps[0].Add(l.window).Sub(now)
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// prune drops stamps that have left the window. Callers hold l.mu.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.stamps) && !l.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[i:]...)
	}
}
