package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache is a key/value store with per-key TTL. Values are copied in and out,
// Get decodes into v.
type Cache interface {
	Get(ctx context.Context, key string, v interface{}) error
	Set(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

var (
	_ Cache = (*RedisCache)(nil)
	_ Cache = (*LRUCache)(nil)
)
