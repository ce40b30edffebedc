package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// cacheNamespace prefixes every key the service writes, so a flush only
// touches our own entries on a shared Redis.
const cacheNamespace = "localservices:"

// flushScanCount is the SCAN page size used while flushing.
const flushScanCount = 500

// Cache stores JSON documents under string keys. Get returns redis.Nil on a miss.
type Cache interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Flush(ctx context.Context) error
}

type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, prefix: cacheNamespace}
}

// Set marshals value to JSON. A nil slice is stored as "null", so callers
// caching "no results" pass an empty, non-nil slice.
func (c *RedisCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not encode cache entry %s: %w", key, err)
	}
	return c.client.Set(ctx, c.prefix+key, payload, expiration).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, c.prefix+key).Result()
}

// Flush deletes every namespaced key, one SCAN page at a time.
func (c *RedisCache) Flush(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", flushScanCount).Result()
		if err != nil {
			return fmt.Errorf("could not scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("could not delete cache keys: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
