package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/shopsphere/backend/internal/infrastructure/cache"
)

// InMemoryLimiter implements Limiter with process-local counters for tests
// and single-instance deployments
type InMemoryLimiter struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
	now      func() time.Time
}

type windowCounter struct {
	count     int64
	windowEnd time.Time
}

// NewInMemoryLimiter creates an in-memory limiter
func NewInMemoryLimiter() *InMemoryLimiter {
	return &InMemoryLimiter{
		counters: make(map[string]*windowCounter),
		now:      time.Now,
	}
}

// Allow consumes one hit for actor under policy
func (l *InMemoryLimiter) Allow(ctx context.Context, policy Policy, actor string) (Decision, error) {
	now := l.now().UTC()
	windowStart := now.Truncate(policy.Window)
	key := cache.RateLimitKey(policy.Scope, actor, windowStart.Format(bucketFormat))

	l.mu.Lock()
	defer l.mu.Unlock()

	counter, ok := l.counters[key]
	if !ok {
		l.pruneExpired(now)
		counter = &windowCounter{windowEnd: windowStart.Add(policy.Window)}
		l.counters[key] = counter
	}
	counter.count++

	if counter.count > policy.Limit {
		return Decision{Allowed: false, Remaining: 0, RetryAfter: counter.windowEnd.Sub(now)}, nil
	}
	return Decision{Allowed: true, Remaining: policy.Limit - counter.count}, nil
}

// pruneExpired drops counters whose window has closed. Called with the mutex held.
func (l *InMemoryLimiter) pruneExpired(now time.Time) {
	for key, counter := range l.counters {
		if now.After(counter.windowEnd) {
			delete(l.counters, key)
		}
	}
}

// Ensure InMemoryLimiter implements Limiter
var _ Limiter = (*InMemoryLimiter)(nil)
