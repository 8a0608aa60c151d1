package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopsphere/backend/internal/domain/shared"
)

// InMemoryLock implements DistributedLock with process-local state. Suitable
// for tests and single-instance deployments; it cannot exclude other processes.
type InMemoryLock struct {
	mu    sync.Mutex
	locks map[string]inMemoryLockEntry
}

type inMemoryLockEntry struct {
	token     string
	expiresAt time.Time
}

// NewInMemoryLock creates an in-memory lock
func NewInMemoryLock() *InMemoryLock {
	return &InMemoryLock{
		locks: make(map[string]inMemoryLockEntry),
	}
}

// TryAcquire attempts to take the lock without blocking
func (l *InMemoryLock) TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.locks[key]; ok && time.Now().Before(entry.expiresAt) {
		return "", false, nil
	}

	token := uuid.NewString()
	l.locks[key] = inMemoryLockEntry{
		token:     token,
		expiresAt: time.Now().Add(ttl),
	}
	return token, true, nil
}

// Release frees the lock only when token still owns it
func (l *InMemoryLock) Release(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.locks[key]; ok && entry.token == token {
		delete(l.locks, key)
	}
	return nil
}

// ExecuteWithLock runs fn while holding the lock
func (l *InMemoryLock) ExecuteWithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	token, ok, err := l.TryAcquire(ctx, key, ttl)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrSystemBusy
	}
	defer func() {
		_ = l.Release(ctx, key, token)
	}()

	return fn(ctx)
}

// Ensure InMemoryLock implements DistributedLock
var _ DistributedLock = (*InMemoryLock)(nil)
