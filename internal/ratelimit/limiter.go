// Package ratelimit implements a fixed-window per-client request limiter
// backed by Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Siddarth2230/shortlink/pkg/metrics"
)

const (
	DefaultLimit  = 10
	DefaultWindow = 60 * time.Second
	keyPrefix     = "ratelimit:"
)

// fixedWindowScript increments the client's counter and starts the window on
// the first hit. Both steps run inside one script so concurrent first
// requests cannot reset each other's window.
//
// KEYS[1]: counter key
// ARGV[1]: window length in seconds
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`)

// RateLimitedError is returned when a client exceeded its window budget.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

// IsRateLimited reports whether err is a rejection and returns it.
func IsRateLimited(err error) (*RateLimitedError, bool) {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}

// Limiter is a fixed-window counter keyed by client identity.
type Limiter struct {
	client redis.Cmdable
	limit  int64
	window time.Duration
	logger logrus.FieldLogger
}

func NewLimiter(client redis.Cmdable, limit int64, window time.Duration, logger logrus.FieldLogger) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window < time.Second {
		window = DefaultWindow
	}
	return &Limiter{
		client: client,
		limit:  limit,
		window: window,
		logger: logger,
	}
}

// Admit counts one request for clientID. It returns a *RateLimitedError once
// the count exceeds the limit within the current window. Store failures admit
// the request.
func (l *Limiter) Admit(ctx context.Context, clientID string) error {
	count, err := fixedWindowScript.Run(ctx, l.client,
		[]string{keyPrefix + clientID},
		int64(l.window/time.Second),
	).Int64()
	if err != nil {
		metrics.RateLimiterErrors.Inc()
		l.logger.WithError(err).WithField("client", clientID).Warn("rate limiter unavailable, admitting request")
		return nil
	}

	if count > l.limit {
		metrics.RateLimited.Inc()
		return &RateLimitedError{RetryAfter: l.window}
	}
	return nil
}
