package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CartCache stores per-user carts as productID -> quantity maps. Writes are
// write-through from the cart service; checkout deletes the whole cart.
type CartCache interface {
	// GetItems returns the full cart, empty map when the user has none
	GetItems(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int, error)
	// SetItem writes one line and refreshes the cart's TTL
	SetItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	// RemoveItem deletes one line; an absent line is not an error
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
	// Invalidate drops the whole cart
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// RedisCartCache implements CartCache on a Redis hash per user
type RedisCartCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCartCache creates a cart cache on an existing Redis client
func NewRedisCartCache(client *redis.Client, ttl time.Duration) *RedisCartCache {
	return &RedisCartCache{client: client, ttl: ttl}
}

// GetItems returns the full cart for a user
func (c *RedisCartCache) GetItems(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int, error) {
	fields, err := c.client.HGetAll(ctx, CartKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	items := make(map[uuid.UUID]int, len(fields))
	for field, value := range fields {
		productID, err := uuid.Parse(field)
		if err != nil {
			// Unparseable fields are skipped rather than failing the read.
			continue
		}
		quantity, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		items[productID] = quantity
	}
	return items, nil
}

// SetItem writes one cart line and slides the expiry window
func (c *RedisCartCache) SetItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	key := CartKey(userID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, productID.String(), strconv.Itoa(quantity))
	pipe.Expire(ctx, key, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// RemoveItem deletes one cart line
func (c *RedisCartCache) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return c.client.HDel(ctx, CartKey(userID), productID.String()).Err()
}

// Invalidate drops the whole cart
func (c *RedisCartCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, CartKey(userID)).Err()
}

// Ensure RedisCartCache implements CartCache
var _ CartCache = (*RedisCartCache)(nil)
