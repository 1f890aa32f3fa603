package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum interval between calls sharing a key. Keys are
// provider names or domains; unrelated keys never delay each other. When
// maxDelay > minDelay each turn draws a random extra delay in
// [0, maxDelay-minDelay), so consecutive releases on a key are spaced
// somewhere inside [minDelay, maxDelay) — but never closer than minDelay.
type Limiter struct {
	minDelay time.Duration
	maxDelay time.Duration

	mu sync.Mutex
	// fixed holds rate limiters for keys with an interval override; their
	// spacing is constant, so the token-bucket primitive fits.
	fixed map[string]*rate.Limiter
	// releases holds the last release time for jittered keys. Spacing is
	// measured release-to-release: the next turn's delay starts when the
	// previous Wait returned, not when it was reserved.
	releases map[string]time.Time
}

// New creates a Limiter with the given default interval bounds.
func New(minDelay, maxDelay time.Duration) *Limiter {
	return &Limiter{
		minDelay: minDelay,
		maxDelay: maxDelay,
		fixed:    make(map[string]*rate.Limiter),
		releases: make(map[string]time.Time),
	}
}

// SetMinInterval overrides the minimum interval for one key. Overridden keys
// get a fixed interval with no jitter. Must be called before the first Wait
// on that key.
func (l *Limiter) SetMinInterval(key string, d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fixed[key] = rate.NewLimiter(rate.Every(d), 1)
}

// Wait blocks until the key's turn, i.e. until at least the minimum interval
// has elapsed since the previous Wait with the same key returned. The first
// Wait on a key returns immediately. Returns early only when ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	l.mu.Lock()
	if lim, ok := l.fixed[key]; ok {
		l.mu.Unlock()
		return lim.Wait(ctx)
	}
	last, seen := l.releases[key]
	l.mu.Unlock()

	if seen {
		gap := l.minDelay
		if l.maxDelay > l.minDelay {
			gap += time.Duration(rand.Int63n(int64(l.maxDelay - l.minDelay)))
		}
		if wait := time.Until(last.Add(gap)); wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
			}
		}
	}

	l.mu.Lock()
	l.releases[key] = time.Now()
	l.mu.Unlock()
	return nil
}
