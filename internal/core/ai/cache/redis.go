package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// RedisCache stores suggestions in Redis with a TTL
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	hits   int64
	misses int64
}

// NewRedisCache wraps a connected client
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached value or common.ErrCacheMiss
func (s *RedisCache) Get(ctx context.Context, model, prompt string) (string, error) {
	value, err := s.client.Get(ctx, generateKey(model, prompt)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddInt64(&s.misses, 1)
			common.LogCacheMiss("redis")
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}

	atomic.AddInt64(&s.hits, 1)
	common.LogCacheHit("redis")
	return value, nil
}

// Set stores value under the prompt key
func (s *RedisCache) Set(ctx context.Context, model, prompt, value string) error {
	if err := s.client.Set(ctx, generateKey(model, prompt), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Stats returns hit and miss counters
func (s *RedisCache) Stats() map[string]interface{} {
	return map[string]interface{}{
		"backend": "redis",
		"hits":    atomic.LoadInt64(&s.hits),
		"misses":  atomic.LoadInt64(&s.misses),
	}
}

// Close is a no-op; the client is owned by the caller
func (s *RedisCache) Close() error {
	return nil
}
