package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "url_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"layer"}, // "redis" or "memory"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "url_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"layer"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "url_cache_errors_total",
			Help: "Cache operations that failed and were treated as misses",
		},
		[]string{"layer", "op"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "url_cache_size",
			Help: "Current number of items in cache",
		},
		[]string{"layer"},
	)

	// Request metrics
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "url_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route", "status"},
	)

	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "url_requests_total",
			Help: "Total number of requests",
		},
		[]string{"method", "route", "status"},
	)

	// Resolution outcomes: found, expired, not_found, rate_limited, error
	Resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "url_resolutions_total",
			Help: "Resolution pipeline outcomes",
		},
		[]string{"outcome"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "url_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	RateLimiterErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "url_rate_limiter_errors_total",
			Help: "Rate limiter store failures (requests admitted)",
		},
	)

	// Click accounting: recorded, failed, dropped
	ClickEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "url_click_events_total",
			Help: "Click increments by result",
		},
		[]string{"result"},
	)

	// Database metrics
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "url_database_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)
