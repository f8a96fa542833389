package service

import (
	"context"
	"sync"
	"time"
)

// WriteLimiter throttles mutating requests per client key using a token bucket.
// It is safe for concurrent use.
type WriteLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     float64 // tokens added per second
	capacity float64
	now      func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewWriteLimiter creates a limiter allowing bursts of capacity writes per key,
// refilled at rate per second.
func NewWriteLimiter(rate, capacity float64) *WriteLimiter {
	return &WriteLimiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		capacity: capacity,
		now:      time.Now,
	}
}

// Allow consumes a token for key and reports whether one was available.
func (l *WriteLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, last: now}
		l.buckets[key] = b
	}

	b.tokens = min(b.tokens+now.Sub(b.last).Seconds()*l.rate, l.capacity)
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Prune drops buckets idle for longer than maxIdle and returns how many went.
func (l *WriteLimiter) Prune(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-maxIdle)
	n := 0
	for key, b := range l.buckets {
		if b.last.Before(cutoff) {
			delete(l.buckets, key)
			n++
		}
	}
	return n
}

// RunJanitor prunes idle buckets every interval until ctx is done.
func (l *WriteLimiter) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Prune(maxIdle)
		}
	}
}
