package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Siddarth2230/shortlink/internal/expiry"
	"github.com/Siddarth2230/shortlink/internal/models"
	"github.com/Siddarth2230/shortlink/internal/repository"
	"github.com/Siddarth2230/shortlink/pkg/cache"
	"github.com/Siddarth2230/shortlink/pkg/idgen"
)

// Repository is the durable record store.
type Repository interface {
	CreateWithCode(ctx context.Context, url *models.URL, code repository.CodeFunc) error
	FindByShortCode(ctx context.Context, shortCode string) (*models.URL, error)
	IncrementClicks(ctx context.Context, shortCode string) error
}

// Entry is the cached form of a live mapping. ExpiresAt travels with the
// target so a cache hit can still be rejected once the link has expired.
type Entry struct {
	Target    string     `json:"target"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type StoreOptions struct {
	CacheTimeout time.Duration
	DBTimeout    time.Duration
	DefaultTTL   time.Duration
}

// Store is the cache-aside layer over the durable repository. The cache is
// only an optimization: any cache failure falls through to the repository.
type Store struct {
	repo   Repository
	cache  cache.Cache
	policy expiry.Policy
	opts   StoreOptions
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewStore(repo Repository, c cache.Cache, opts StoreOptions, logger logrus.FieldLogger) *Store {
	if opts.CacheTimeout <= 0 {
		opts.CacheTimeout = 50 * time.Millisecond
	}
	if opts.DBTimeout <= 0 {
		opts.DBTimeout = 2 * time.Second
	}
	return &Store{
		repo:   repo,
		cache:  c,
		policy: expiry.NewPolicy(opts.DefaultTTL),
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// Resolve returns the target for shortCode, reading through the cache.
// It returns ErrNotFound, ErrExpired or ErrUpstreamUnavailable.
func (s *Store) Resolve(ctx context.Context, shortCode string) (string, error) {
	if entry, ok := s.cached(ctx, shortCode); ok {
		if entry.ExpiresAt != nil && !entry.ExpiresAt.After(s.now()) {
			return "", ErrExpired
		}
		return entry.Target, nil
	}

	u, err := s.find(ctx, shortCode)
	if err != nil {
		return "", err
	}

	decision := s.policy.Liveness(u.ExpiresAt, s.now())
	if !decision.Live {
		return "", ErrExpired
	}
	if decision.Cacheable() {
		s.populate(ctx, shortCode, Entry{Target: u.LongURL, ExpiresAt: u.ExpiresAt}, decision.TTL)
	}
	return u.LongURL, nil
}

// Lookup reads the full record from the repository, bypassing the cache.
// Expired records are returned as well.
func (s *Store) Lookup(ctx context.Context, shortCode string) (*models.URL, error) {
	return s.find(ctx, shortCode)
}

// Create allocates a durable record, derives its short code from the id and
// finalizes it. Nothing is left resolvable if any step fails.
func (s *Store) Create(ctx context.Context, target string, expiresAt *time.Time) (*models.URL, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.DBTimeout)
	defer cancel()

	u := &models.URL{LongURL: target, ExpiresAt: expiresAt}
	if err := s.repo.CreateWithCode(ctx, u, idgen.Encode); err != nil {
		return nil, errors.Wrapf(ErrUpstreamUnavailable, "create: %v", err)
	}
	return u, nil
}

func (s *Store) cached(ctx context.Context, shortCode string) (Entry, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.CacheTimeout)
	defer cancel()

	var entry Entry
	err := s.cache.Get(ctx, shortCode, &entry)
	if err == nil {
		return entry, true
	}
	if err != cache.ErrCacheMiss {
		s.logger.WithError(err).WithField("short_code", shortCode).Warn("cache get failed, falling back to store")
	}
	return Entry{}, false
}

func (s *Store) populate(ctx context.Context, shortCode string, entry Entry, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.CacheTimeout)
	defer cancel()

	if err := s.cache.Set(ctx, shortCode, entry, ttl); err != nil {
		s.logger.WithError(err).WithField("short_code", shortCode).Warn("cache set failed")
	}
}

func (s *Store) find(ctx context.Context, shortCode string) (*models.URL, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.DBTimeout)
	defer cancel()

	u, err := s.repo.FindByShortCode(ctx, shortCode)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(ErrUpstreamUnavailable, "find %s: %v", shortCode, err)
	}
	return u, nil
}
