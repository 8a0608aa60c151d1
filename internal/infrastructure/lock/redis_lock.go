package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopsphere/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// releaseScript deletes the key only while the caller's token still owns it.
// The compare and the delete must be one atomic step, otherwise a lock that
// expired between them could free a newer holder's lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// RedisLock implements DistributedLock on Redis SET NX EX
type RedisLock struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisLock creates a distributed lock on an existing Redis client
func NewRedisLock(client *redis.Client, logger *zap.Logger) *RedisLock {
	return &RedisLock{client: client, logger: logger}
}

// TryAcquire attempts to take the lock without blocking
func (l *RedisLock) TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees the lock only when token still owns it
func (l *RedisLock) Release(ctx context.Context, key, token string) error {
	released, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
	if err != nil {
		return err
	}
	if released == 0 {
		l.logger.Debug("lock already expired or owned elsewhere",
			zap.String("key", key),
		)
	}
	return nil
}

// ExecuteWithLock runs fn while holding the lock
func (l *RedisLock) ExecuteWithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	token, ok, err := l.TryAcquire(ctx, key, ttl)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrSystemBusy
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := l.Release(releaseCtx, key, token); err != nil {
			l.logger.Warn("failed to release lock, relying on TTL expiry",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}()

	return fn(ctx)
}

// Ensure RedisLock implements DistributedLock
var _ DistributedLock = (*RedisLock)(nil)
