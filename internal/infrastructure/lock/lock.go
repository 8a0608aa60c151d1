package lock

import (
	"context"
	"time"
)

// DistributedLock provides mutual exclusion across process instances. Locks
// always carry a TTL so a crashed holder cannot wedge the resource forever.
type DistributedLock interface {
	// TryAcquire attempts to take the lock without blocking. The returned
	// token identifies this acquisition and is required to release. A store
	// error reads as not acquired: callers fail closed rather than assume
	// they hold the lock.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)

	// Release frees the lock only when token still owns it. Releasing a lock
	// that expired and was re-acquired by someone else is a no-op.
	Release(ctx context.Context, key, token string) error

	// ExecuteWithLock runs fn while holding the lock and releases it
	// afterwards even when fn fails. Contention surfaces as
	// shared.ErrSystemBusy so callers can tell "retry later" from a fault.
	ExecuteWithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error
}
