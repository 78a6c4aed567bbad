package service

import (
	"github.com/pkg/errors"

	"github.com/Siddarth2230/shortlink/internal/ratelimit"
)

var (
	ErrInvalidURL          = errors.New("invalid URL")
	ErrInvalidExpiry       = errors.New("invalid expiry")
	ErrNotFound            = errors.New("short code not found")
	ErrExpired             = errors.New("short URL expired")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// RateLimitedError is the rejection returned when a client exceeds its budget.
type RateLimitedError = ratelimit.RateLimitedError

// IsInvalidInput reports whether err was caused by a malformed request.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidURL) || errors.Is(err, ErrInvalidExpiry)
}

// IsRateLimited reports whether err is a rate limit rejection.
func IsRateLimited(err error) (*RateLimitedError, bool) {
	return ratelimit.IsRateLimited(err)
}
