package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const externalResultsTTL = 10 * time.Minute

// A location that could not be geocoded is remembered for this long, for
// every category searched there.
const unresolvedLocationTTL = 2 * time.Minute

// versionedCacheKey builds "<prefix>:<hash>" where hash is the first 24 hex
// characters of the SHA-256 of the JSON-encoded payload. encoding/json sorts
// map keys, so equal payloads always produce equal keys. Bump the version
// inside prefix whenever the cached shape changes.
func versionedCacheKey(prefix string, payload map[string]any) string {
	raw, err := json.Marshal(payload)
	if err != nil {
		// payloads are built from strings and ints only
		panic(err)
	}
	sum := sha256.Sum256(raw)
	return prefix + ":" + hex.EncodeToString(sum[:])[:24]
}

// getCachedJSON returns the decoded value and true on a hit. Misses, cache
// failures and undecodable entries all count as a miss; only the latter two
// are logged.
func getCachedJSON[T any](ctx context.Context, cache Cache, logger *slog.Logger, prefix, key string) (T, bool) {
	var zero T
	if cache == nil {
		return zero, false
	}
	raw, err := cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			cacheLookupsTotal.WithLabelValues(prefix, "miss").Inc()
		} else {
			cacheLookupsTotal.WithLabelValues(prefix, "error").Inc()
			logger.Warn("error getting from cache", "key", key, "error", err)
		}
		return zero, false
	}

	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		cacheLookupsTotal.WithLabelValues(prefix, "invalid").Inc()
		logger.Warn("invalid cache entry: unmarshal error", "key", key, "error", err)
		return zero, false
	}
	cacheLookupsTotal.WithLabelValues(prefix, "hit").Inc()
	logger.Debug("cache hit", "key", key)
	return value, true
}

func setCachedJSON(ctx context.Context, cache Cache, logger *slog.Logger, key string, value any, ttl time.Duration) {
	if cache == nil {
		return
	}
	if err := cache.Set(ctx, key, value, ttl); err != nil {
		logger.Warn("error setting to cache", "key", key, "error", err)
		return
	}
	logger.Debug("set to cache", "key", key, "ttl", ttl)
}
