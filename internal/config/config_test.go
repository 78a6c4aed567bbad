package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, CacheBackendRedis, cfg.CacheBackend)
	assert.Equal(t, int64(10), cfg.RateLimit)
	assert.Equal(t, 60*time.Second, cfg.RateWindow)
	assert.Equal(t, time.Hour, cfg.DefaultCacheTTL)
	assert.Equal(t, 50*time.Millisecond, cfg.CacheTimeout)
	assert.True(t, cfg.MigrateOnStart)
	assert.False(t, cfg.TrustProxy)
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"PORT":          "9090",
		"CACHE_BACKEND": "memory",
		"RATE_LIMIT":    "3",
		"RATE_WINDOW":   "10s",
		"TRUST_PROXY":   "true",
		"CLICK_WORKERS": "8",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, CacheBackendMemory, cfg.CacheBackend)
	assert.Equal(t, int64(3), cfg.RateLimit)
	assert.Equal(t, 10*time.Second, cfg.RateWindow)
	assert.True(t, cfg.TrustProxy)
	assert.Equal(t, 8, cfg.ClickWorkers)
}

func TestFromLookup_Invalid(t *testing.T) {
	for _, env := range []map[string]string{
		{"RATE_LIMIT": "ten"},
		{"CACHE_TIMEOUT": "fast"},
		{"TRUST_PROXY": "maybe"},
		{"CACHE_BACKEND": "memcached"},
		{"RATE_WINDOW": "500ms"},
	} {
		_, err := FromLookup(lookupFrom(env))
		assert.Error(t, err, "%v", env)
	}
}
