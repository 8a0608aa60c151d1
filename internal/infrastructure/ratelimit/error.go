package ratelimit

import (
	"fmt"
	"time"

	"github.com/shopsphere/backend/internal/domain/shared"
)

// ExceededError is returned when a policy rejects a hit. It unwraps to
// shared.ErrRateLimited so callers can match the domain code, while carrying
// the RetryAfter hint for the transport layer.
type ExceededError struct {
	Scope      string
	RetryAfter time.Duration
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %s", e.Scope, e.RetryAfter)
}

// Unwrap exposes the domain sentinel for errors.Is matching
func (e *ExceededError) Unwrap() error {
	return shared.ErrRateLimited
}
