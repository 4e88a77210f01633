// Package cache provides a small Redis-backed JSON cache. All methods are
// nil-receiver safe so callers can run without Redis configured.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const suggestionKeyPrefix = "suggestions:"

// SuggestionTTL bounds how stale a cached suggestion list may get. Connection
// mutations also invalidate eagerly.
const SuggestionTTL = 5 * time.Minute

type Cache struct {
	client *redis.Client
}

// New connects a cache to the given Redis address. Returns nil when addr is
// empty, which disables caching.
func New(addr, password string) *Cache {
	if addr == "" {
		return nil
	}
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

// GetJSON loads the value at key into dest. Returns false on miss or when the
// cache is disabled.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// SetJSON stores value at key with the given TTL. Failures are swallowed; the
// cache is an optimization, not a source of truth.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, data, ttl)
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	c.client.Del(ctx, keys...)
}

// SuggestionKey returns the cache key for a user's suggestion list.
func SuggestionKey(userID uint) string {
	return suggestionKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}
