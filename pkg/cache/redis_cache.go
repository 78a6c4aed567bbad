package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/Siddarth2230/shortlink/pkg/metrics"
)

const layerRedis = "redis"

// RedisCache wraps Redis client for caching
type RedisCache struct {
	client redis.Cmdable
	prefix string
}

// NewRedisCache creates a Redis cache. Keys are namespaced with prefix.
func NewRedisCache(client redis.Cmdable, prefix string) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisCache) key(k string) string {
	return r.prefix + k
}

// Get retrieves a value from Redis and unmarshals into v
func (r *RedisCache) Get(ctx context.Context, key string, v interface{}) error {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err == redis.Nil {
		metrics.CacheMisses.WithLabelValues(layerRedis).Inc()
		return ErrCacheMiss
	}
	if err != nil {
		metrics.CacheErrors.WithLabelValues(layerRedis, "get").Inc()
		return errors.Wrapf(err, "redis get %s", key)
	}

	if err := json.Unmarshal(data, v); err != nil {
		metrics.CacheErrors.WithLabelValues(layerRedis, "decode").Inc()
		return errors.Wrapf(err, "decode cached %s", key)
	}
	metrics.CacheHits.WithLabelValues(layerRedis).Inc()
	return nil
}

// Set stores a value in Redis with TTL. A non-positive ttl stores nothing.
func (r *RedisCache) Set(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}

	if err := r.client.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
		metrics.CacheErrors.WithLabelValues(layerRedis, "set").Inc()
		return errors.Wrapf(err, "redis set %s", key)
	}
	return nil
}

// Delete removes a key from Redis
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(r.client.Del(ctx, r.key(key)).Err(), "redis del %s", key)
}

// Exists checks if a key exists
func (r *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	return n > 0, err
}
