package notify

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const unreadKeyPrefix = "notify:unread:"

// UnreadCache caches per-user unread counters in Redis. A nil client makes
// every call a miss, so the cache is safe to run without Redis.
type UnreadCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUnreadCache builds the cache.
func NewUnreadCache(client *redis.Client, ttl time.Duration) *UnreadCache {
	return &UnreadCache{client: client, ttl: ttl}
}

// Get returns the cached counter, or ok=false on a miss.
func (c *UnreadCache) Get(ctx context.Context, userID string) (int64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	val, err := c.client.Get(ctx, unreadKeyPrefix+userID).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

// Set stores the counter until TTL or invalidation.
func (c *UnreadCache) Set(ctx context.Context, userID string, count int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, unreadKeyPrefix+userID, count, c.ttl).Err()
}

// Invalidate drops the counter after any write that changes it.
func (c *UnreadCache) Invalidate(ctx context.Context, userID string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, unreadKeyPrefix+userID).Err()
}
