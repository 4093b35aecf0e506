package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"quickforge/internal/observability"
)

// ErrCacheMiss is returned by GetJSON when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// GetJSON fetches key and unmarshals it into dest.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, dest any) error {
	if rdb == nil {
		return ErrCacheMiss
	}
	raw, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// SetJSON marshals value and stores it under key with the given TTL.
func SetJSON(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	if rdb == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, raw, ttl).Err()
}

// Aside implements cache-aside: try the cache, on miss call load, then
// populate the cache. Cache failures never fail the request.
func Aside[T any](ctx context.Context, rdb *redis.Client, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	err := GetJSON(ctx, rdb, key, &cached)
	if err == nil {
		observability.CacheHits.WithLabelValues("hit").Inc()
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		slog.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}
	observability.CacheHits.WithLabelValues("miss").Inc()

	fresh, err := load(ctx)
	if err != nil {
		return fresh, err
	}
	if err := SetJSON(ctx, rdb, key, fresh, ttl); err != nil {
		slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return fresh, nil
}

// Invalidate deletes the given keys, ignoring errors.
func Invalidate(ctx context.Context, rdb *redis.Client, keys ...string) {
	if rdb == nil || len(keys) == 0 {
		return
	}
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		slog.WarnContext(ctx, "cache invalidation failed", "keys", keys, "error", err)
	}
}
