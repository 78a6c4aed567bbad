package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Siddarth2230/shortlink/internal/models"
	"github.com/Siddarth2230/shortlink/pkg/idgen"
	"github.com/Siddarth2230/shortlink/pkg/metrics"
)

// Limiter admits or rejects a request for a client.
type Limiter interface {
	Admit(ctx context.Context, clientID string) error
}

// ClickRecorder counts a successful resolution without blocking.
type ClickRecorder interface {
	Record(shortCode string)
}

const maxExpiresIn = 100 * 365 * 24 * time.Hour

// URLService provides URL shortening and lookup.
type URLService struct {
	store   *Store
	limiter Limiter
	clicks  ClickRecorder
	BaseURL string // optional; set to produce absolute short URLs
	logger  logrus.FieldLogger
	now     func() time.Time
}

// NewURLService constructor.
func NewURLService(store *Store, limiter Limiter, clicks ClickRecorder, baseURL string, logger logrus.FieldLogger) *URLService {
	return &URLService{
		store:   store,
		limiter: limiter,
		clicks:  clicks,
		BaseURL: baseURL,
		logger:  logger,
		now:     time.Now,
	}
}

// ShortenURL validates the request, creates the durable record and returns
// its short code.
func (s *URLService) ShortenURL(ctx context.Context, clientID string, req models.ShortenRequest) (*models.ShortenResponse, error) {
	if err := s.limiter.Admit(ctx, clientID); err != nil {
		return nil, err
	}
	if err := validateURL(req.URL); err != nil {
		return nil, err
	}
	expiresAt, err := s.parseExpiry(req)
	if err != nil {
		return nil, err
	}

	u, err := s.store.Create(ctx, req.URL, expiresAt)
	if err != nil {
		s.logger.WithError(err).Error("create short url")
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"id": u.ID, "short_code": u.ShortCode}).Info("short url created")

	return &models.ShortenResponse{
		ShortCode: u.ShortCode,
		ShortURL:  s.shortURL(u.ShortCode),
		LongURL:   u.LongURL,
		ExpiresAt: u.ExpiresAt,
	}, nil
}

// Resolve runs the redirect pipeline for one request: rate check, cache-aside
// lookup with expiry, then a background click increment on success.
func (s *URLService) Resolve(ctx context.Context, clientID, shortCode string) (string, error) {
	if err := s.limiter.Admit(ctx, clientID); err != nil {
		metrics.Resolutions.WithLabelValues("rate_limited").Inc()
		return "", err
	}

	// codes are never decoded, but anything outside the alphabet cannot exist
	if _, err := idgen.Decode(shortCode); err != nil {
		metrics.Resolutions.WithLabelValues("not_found").Inc()
		return "", ErrNotFound
	}

	target, err := s.store.Resolve(ctx, shortCode)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		metrics.Resolutions.WithLabelValues("not_found").Inc()
		return "", err
	case errors.Is(err, ErrExpired):
		metrics.Resolutions.WithLabelValues("expired").Inc()
		return "", err
	default:
		metrics.Resolutions.WithLabelValues("error").Inc()
		return "", err
	}

	metrics.Resolutions.WithLabelValues("found").Inc()
	s.clicks.Record(shortCode)
	return target, nil
}

// Stats returns the stored record for shortCode, including expired ones.
func (s *URLService) Stats(ctx context.Context, shortCode string) (*models.StatsResponse, error) {
	if _, err := idgen.Decode(shortCode); err != nil {
		return nil, ErrNotFound
	}
	u, err := s.store.Lookup(ctx, shortCode)
	if err != nil {
		return nil, err
	}
	return &models.StatsResponse{
		ShortCode:  u.ShortCode,
		LongURL:    u.LongURL,
		CreatedAt:  u.CreatedAt,
		ExpiresAt:  u.ExpiresAt,
		ClickCount: u.ClickCount,
	}, nil
}

func (s *URLService) shortURL(code string) string {
	if s.BaseURL == "" {
		return code
	}
	return fmt.Sprintf("%s/%s", s.BaseURL, code)
}

// parseExpiry accepts either an absolute RFC 3339 timestamp or a relative
// number of seconds. The result must lie in the future.
func (s *URLService) parseExpiry(req models.ShortenRequest) (*time.Time, error) {
	now := s.now().UTC()
	switch {
	case req.ExpiresAt != "" && req.ExpiresInSeconds != nil:
		return nil, errors.Wrap(ErrInvalidExpiry, "set either expires_at or expires_in_seconds")
	case req.ExpiresAt != "":
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidExpiry, "expires_at %q is not RFC 3339", req.ExpiresAt)
		}
		if !t.After(now) {
			return nil, errors.Wrap(ErrInvalidExpiry, "expires_at must be in the future")
		}
		t = t.UTC()
		return &t, nil
	case req.ExpiresInSeconds != nil:
		if *req.ExpiresInSeconds <= 0 || *req.ExpiresInSeconds > int64(maxExpiresIn/time.Second) {
			return nil, errors.Wrap(ErrInvalidExpiry, "expires_in_seconds out of range")
		}
		t := now.Add(time.Duration(*req.ExpiresInSeconds) * time.Second)
		return &t, nil
	}
	return nil, nil
}

// validateURL checks that the URL is syntactically valid and uses http/https.
func validateURL(urlStr string) error {
	if urlStr == "" {
		return ErrInvalidURL
	}
	parsed, err := url.ParseRequestURI(urlStr)
	if err != nil {
		return errors.Wrap(ErrInvalidURL, err.Error())
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return ErrInvalidURL
	}
	// Restrict to http(s) for redirect safety
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.Wrapf(ErrInvalidURL, "unsupported URL scheme: %s", parsed.Scheme)
	}
	return nil
}
