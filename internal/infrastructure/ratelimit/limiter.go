package ratelimit

import (
	"context"
	"time"
)

// Policy is one fixed-window rate limit: at most Limit hits per Window for a
// given actor within a scope. Scope names the protected surface (one counter
// keyspace per scope), the actor is a user ID or client IP.
type Policy struct {
	Scope  string
	Limit  int64
	Window time.Duration
}

// Decision is the outcome of one rate-limit check
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter counts hits in fixed windows. The window boundary resets the count
// completely, so a burst straddling the boundary can see up to twice the
// limit; that is accepted in exchange for a single cheap counter per window.
type Limiter interface {
	// Allow consumes one hit for actor under policy and reports the outcome.
	// RetryAfter is only meaningful on rejections.
	Allow(ctx context.Context, policy Policy, actor string) (Decision, error)
}
