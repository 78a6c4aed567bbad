// Package expiry decides whether a short link is still live and how long a
// live mapping may stay in the cache.
package expiry

import "time"

// DefaultTTL is the cache lifetime for links without an expiry.
const DefaultTTL = time.Hour

// Decision is the outcome of a liveness check.
type Decision struct {
	Live bool
	// TTL is the cache lifetime for a live link, in whole seconds. Zero means
	// the link is live but too close to its expiry to be cached.
	TTL time.Duration
}

// Cacheable reports whether the mapping may be installed into the cache.
func (d Decision) Cacheable() bool {
	return d.Live && d.TTL > 0
}

// Policy derives liveness with a configurable default TTL.
type Policy struct {
	DefaultTTL time.Duration
}

// NewPolicy returns a Policy. A non-positive defaultTTL falls back to DefaultTTL.
func NewPolicy(defaultTTL time.Duration) Policy {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return Policy{DefaultTTL: defaultTTL}
}

// Liveness evaluates expiresAt against now. A link whose expiry equals now is dead.
func (p Policy) Liveness(expiresAt *time.Time, now time.Time) Decision {
	if expiresAt == nil {
		return Decision{Live: true, TTL: p.DefaultTTL}
	}
	if !expiresAt.After(now) {
		return Decision{Live: false}
	}
	ttl := expiresAt.Sub(now).Truncate(time.Second)
	if ttl < 0 {
		ttl = 0
	}
	return Decision{Live: true, TTL: ttl}
}

// Liveness evaluates expiresAt with the package default TTL.
func Liveness(expiresAt *time.Time, now time.Time) Decision {
	return NewPolicy(DefaultTTL).Liveness(expiresAt, now)
}
