package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// Key builders for every Redis keyspace the platform uses. Centralized so
// invalidation code and writers can never drift apart on key layout.

// CartKey is the hash holding one user's cart, field productID -> quantity
func CartKey(userID uuid.UUID) string {
	return fmt.Sprintf("cart:user:%s", userID)
}

// ProductLockKey guards stock mutations of one product
func ProductLockKey(productID uuid.UUID) string {
	return fmt.Sprintf("lock:product:%s", productID)
}

// RateLimitKey is one fixed-window counter. The bucket string pins the key to
// a window start so each window gets a fresh counter.
func RateLimitKey(scope, actor, bucket string) string {
	return fmt.Sprintf("ratelimit:%s:%s:%s", scope, actor, bucket)
}

// ProductViewsKey is the global sorted set of product view counters
func ProductViewsKey() string {
	return "rec:views"
}

// RecentlyViewedKey is one user's most-recently-viewed product list
func RecentlyViewedKey(userID uuid.UUID) string {
	return fmt.Sprintf("rec:recent:user:%s", userID)
}

// FrequentlyBoughtKey caches the co-purchase recommendation list of a product
func FrequentlyBoughtKey(productID uuid.UUID) string {
	return fmt.Sprintf("rec:freq:product:%s", productID)
}
