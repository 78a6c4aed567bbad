package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func TestLRUCache_Basic(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUCache(2)

	require.NoError(t, cache.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, cache.Set(ctx, "b", 2, time.Minute))

	var v int
	require.NoError(t, cache.Get(ctx, "a", &v))
	assert.Equal(t, 1, v)

	// Cache is full, add "c" -> should evict "b" (LRU)
	require.NoError(t, cache.Set(ctx, "c", 3, time.Minute))

	assert.ErrorIs(t, cache.Get(ctx, "b", &v), ErrCacheMiss)
	assert.NoError(t, cache.Get(ctx, "a", &v))
	assert.NoError(t, cache.Get(ctx, "c", &v))
	assert.Equal(t, 3, v)
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUCache(2)

	require.NoError(t, cache.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, cache.Set(ctx, "a", 10, time.Minute))

	var v int
	require.NoError(t, cache.Get(ctx, "a", &v))
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, cache.Len())
}

func TestLRUCache_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cache := NewLRUCache(10)
	cache.now = clock.Now

	require.NoError(t, cache.Set(ctx, "a", "x", 2*time.Second))

	var v string
	clock.Advance(time.Second)
	require.NoError(t, cache.Get(ctx, "a", &v))
	assert.Equal(t, "x", v)

	clock.Advance(time.Second)
	assert.ErrorIs(t, cache.Get(ctx, "a", &v), ErrCacheMiss)
	assert.Equal(t, 0, cache.Len())
}

func TestLRUCache_NonPositiveTTLNotStored(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUCache(10)

	require.NoError(t, cache.Set(ctx, "a", "x", 0))
	require.NoError(t, cache.Set(ctx, "b", "y", -time.Second))

	var v string
	assert.ErrorIs(t, cache.Get(ctx, "a", &v), ErrCacheMiss)
	assert.ErrorIs(t, cache.Get(ctx, "b", &v), ErrCacheMiss)
}

func TestLRUCache_Delete(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUCache(10)

	require.NoError(t, cache.Set(ctx, "a", "x", time.Minute))
	require.NoError(t, cache.Delete(ctx, "a"))
	require.NoError(t, cache.Delete(ctx, "missing"))

	var v string
	assert.ErrorIs(t, cache.Get(ctx, "a", &v), ErrCacheMiss)
}

func TestLRUCache_Concurrency(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUCache(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key_%d_%d", id, j)
				_ = cache.Set(ctx, key, j, time.Minute)
				var v int
				_ = cache.Get(ctx, key, &v)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Len(), 100)
}
