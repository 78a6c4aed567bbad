package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Siddarth2230/shortlink/pkg/logger"
)

func newTestLimiter(t *testing.T, limit int64, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return NewLimiter(client, limit, window, logger.Discard()), mr
}

func TestLimiter_ThresholdPerWindow(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(t, 10, time.Minute)

	for i := 0; i < 10; i++ {
		require.NoError(t, l.Admit(ctx, "1.2.3.4"), "request %d", i+1)
	}

	err := l.Admit(ctx, "1.2.3.4")
	rl, ok := IsRateLimited(err)
	require.True(t, ok, "11th request should be rejected, got %v", err)
	assert.Equal(t, time.Minute, rl.RetryAfter)

	// other clients have their own counters
	assert.NoError(t, l.Admit(ctx, "5.6.7.8"))
}

func TestLimiter_WindowReset(t *testing.T) {
	ctx := context.Background()
	l, mr := newTestLimiter(t, 2, time.Minute)

	require.NoError(t, l.Admit(ctx, "c"))
	require.NoError(t, l.Admit(ctx, "c"))
	_, limited := IsRateLimited(l.Admit(ctx, "c"))
	require.True(t, limited)

	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"c"))

	mr.FastForward(time.Minute)

	assert.NoError(t, l.Admit(ctx, "c"))
	assert.NoError(t, l.Admit(ctx, "c"))
	_, limited = IsRateLimited(l.Admit(ctx, "c"))
	assert.True(t, limited)
}

func TestLimiter_ExpirySetOnlyOnFirstHit(t *testing.T) {
	ctx := context.Background()
	l, mr := newTestLimiter(t, 100, time.Minute)

	require.NoError(t, l.Admit(ctx, "c"))
	mr.FastForward(40 * time.Second)
	require.NoError(t, l.Admit(ctx, "c"))

	// the second hit must not extend the window
	assert.Equal(t, 20*time.Second, mr.TTL(keyPrefix+"c"))
}

func TestLimiter_ConcurrentSameClient(t *testing.T) {
	ctx := context.Background()
	l, mr := newTestLimiter(t, 10, time.Minute)

	var admitted int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Admit(ctx, "burst") == nil {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), admitted)
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"burst"))
}

func TestLimiter_FailsOpen(t *testing.T) {
	ctx := context.Background()
	l, mr := newTestLimiter(t, 1, time.Minute)
	mr.Close()

	assert.NoError(t, l.Admit(ctx, "c"))
	assert.NoError(t, l.Admit(ctx, "c"))
}

func TestNewLimiter_Defaults(t *testing.T) {
	l := NewLimiter(nil, 0, 0, logger.Discard())
	assert.Equal(t, int64(DefaultLimit), l.limit)
	assert.Equal(t, DefaultWindow, l.window)
}
