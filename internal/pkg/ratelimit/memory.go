package ratelimit

import (
	"context"
	"sync"
	"time"
)

// InMemoryLimiter is a mutex-protected sliding-window limiter. Each key
// keeps the timestamps of its admitted requests; stale entries are pruned
// before every decision. Suitable for tests and single-node deployments.
type InMemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string][]float64
	now     func() float64
}

// NewInMemoryLimiter creates an empty in-memory limiter.
func NewInMemoryLimiter() *InMemoryLimiter {
	return &InMemoryLimiter{
		buckets: make(map[string][]float64),
		now: func() float64 {
			return float64(time.Now().UnixNano()) / float64(time.Second)
		},
	}
}

// Check implements Limiter. It never returns an error; the signature carries
// one for interface compatibility with remote backends.
func (l *InMemoryLimiter) Check(_ context.Context, key string, maxRequests int, window time.Duration) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowS := window.Seconds()

	history := l.buckets[key][:0:0]
	for _, ts := range l.buckets[key] {
		if ts > now-windowS {
			history = append(history, ts)
		}
	}

	if len(history) >= maxRequests {
		l.buckets[key] = history
		if len(history) == 0 {
			// Zero quota: nothing admitted, next window starts now.
			return BuildResult(false, 0, now, now+windowS), nil
		}

		oldest := history[0]
		for _, ts := range history[1:] {
			if ts < oldest {
				oldest = ts
			}
		}
		return BuildResult(false, 0, now, oldest+windowS), nil
	}

	history = append(history, now)
	l.buckets[key] = history
	return BuildResult(true, maxRequests-len(history), now, history[0]+windowS), nil
}

// Reset drops all tracked keys. Test helper.
func (l *InMemoryLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets = make(map[string][]float64)
}
