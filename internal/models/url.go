package models

import "time"

// URL is a short-link record. ShortCode is empty until the record is finalized.
type URL struct {
	ID         int64      `json:"id" db:"id"`
	ShortCode  string     `json:"short_code" db:"short_code"`
	LongURL    string     `json:"long_url" db:"long_url"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	ClickCount int64      `json:"click_count" db:"click_count"`
}

type ShortenRequest struct {
	URL string `json:"url" validate:"required,url"`
	// ExpiresAt is an RFC 3339 timestamp. ExpiresInSeconds is relative to
	// the time of the request. At most one may be set.
	ExpiresAt        string `json:"expires_at,omitempty"`
	ExpiresInSeconds *int64 `json:"expires_in_seconds,omitempty"`
}

type ShortenResponse struct {
	ShortCode string     `json:"short_code"`
	ShortURL  string     `json:"short_url"`
	LongURL   string     `json:"long_url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type StatsResponse struct {
	ShortCode  string     `json:"short_code"`
	LongURL    string     `json:"long_url"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	ClickCount int64      `json:"click_count"`
}
