package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopsphere/backend/internal/infrastructure/cache"
)

// bucketFormat pins a counter key to its window start, minute precision
const bucketFormat = "200601021504"

// RedisLimiter implements Limiter with one Redis counter per window
type RedisLimiter struct {
	client *redis.Client
	grace  time.Duration
	now    func() time.Time
}

// NewRedisLimiter creates a limiter on an existing Redis client. The grace
// duration pads the counter's expiry past the window end so a hit landing at
// the boundary still finds its counter alive.
func NewRedisLimiter(client *redis.Client, grace time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		grace:  grace,
		now:    time.Now,
	}
}

// Allow consumes one hit for actor under policy
func (l *RedisLimiter) Allow(ctx context.Context, policy Policy, actor string) (Decision, error) {
	now := l.now().UTC()
	windowStart := now.Truncate(policy.Window)
	key := cache.RateLimitKey(policy.Scope, actor, windowStart.Format(bucketFormat))

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, err
	}

	// Only the hit that created the counter sets the expiry; the key dies
	// shortly after its window closes.
	if count == 1 {
		if err := l.client.Expire(ctx, key, policy.Window+l.grace).Err(); err != nil {
			return Decision{}, err
		}
	}

	if count > policy.Limit {
		retryAfter, err := l.client.TTL(ctx, key).Result()
		if err != nil || retryAfter < 0 {
			retryAfter = policy.Window
		}
		return Decision{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
	}

	return Decision{Allowed: true, Remaining: policy.Limit - count}, nil
}

// Ensure RedisLimiter implements Limiter
var _ Limiter = (*RedisLimiter)(nil)
