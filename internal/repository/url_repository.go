package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Siddarth2230/shortlink/internal/models"
	"github.com/Siddarth2230/shortlink/pkg/metrics"
)

var ErrNotFound = errors.New("record not found")

// CodeFunc derives a short code from a freshly allocated id.
type CodeFunc func(id uint64) string

type URLRepository struct {
	db     *sql.DB
	logger logrus.FieldLogger
}

func NewURLRepository(db *sql.DB, logger logrus.FieldLogger) *URLRepository {
	return &URLRepository{db: db, logger: logger}
}

func observe(operation string, start time.Time) {
	metrics.DatabaseQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// CreateWithCode inserts url, derives its short code from the generated id
// and stores the code, all in one transaction. Readers never see the id
// without its code. On success url.ID, url.ShortCode and url.CreatedAt are set.
func (r *URLRepository) CreateWithCode(ctx context.Context, url *models.URL, code CodeFunc) (err error) {
	defer observe("create", time.Now())

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				r.logger.WithError(rbErr).Warn("rollback failed")
			}
		}
	}()

	insert := `
        INSERT INTO urls (long_url, expires_at)
        VALUES ($1, $2)
        RETURNING id, created_at
    `
	var expiresAt sql.NullTime
	if url.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *url.ExpiresAt, Valid: true}
	}
	if err = tx.QueryRowContext(ctx, insert, url.LongURL, expiresAt).Scan(&url.ID, &url.CreatedAt); err != nil {
		return errors.Wrap(err, "insert url")
	}

	shortCode := code(uint64(url.ID))
	if _, err = tx.ExecContext(ctx, `UPDATE urls SET short_code = $1 WHERE id = $2`, shortCode, url.ID); err != nil {
		return errors.Wrapf(err, "finalize url id=%d", url.ID)
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	url.ShortCode = shortCode
	return nil
}

const selectURL = `
        SELECT id, short_code, long_url, created_at, expires_at, click_count
        FROM urls
    `

func scanURL(row *sql.Row) (*models.URL, error) {
	var (
		url       models.URL
		shortCode sql.NullString
		expiresAt sql.NullTime
	)
	if err := row.Scan(&url.ID, &shortCode, &url.LongURL, &url.CreatedAt, &expiresAt, &url.ClickCount); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	url.ShortCode = shortCode.String
	if expiresAt.Valid {
		t := expiresAt.Time
		url.ExpiresAt = &t
	}
	return &url, nil
}

// FindByShortCode returns the record for shortCode regardless of expiry.
func (r *URLRepository) FindByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	defer observe("find_by_code", time.Now())

	url, err := scanURL(r.db.QueryRowContext(ctx, selectURL+`WHERE short_code = $1`, shortCode))
	if err != nil && err != ErrNotFound {
		return nil, errors.Wrapf(err, "find url by short_code=%s", shortCode)
	}
	return url, err
}

// FindByID returns a finalized record by id.
func (r *URLRepository) FindByID(ctx context.Context, id int64) (*models.URL, error) {
	defer observe("find_by_id", time.Now())

	url, err := scanURL(r.db.QueryRowContext(ctx, selectURL+`WHERE id = $1 AND short_code IS NOT NULL`, id))
	if err != nil && err != ErrNotFound {
		return nil, errors.Wrapf(err, "find url by id=%d", id)
	}
	return url, err
}

// IncrementClicks adds one to the click counter of shortCode.
func (r *URLRepository) IncrementClicks(ctx context.Context, shortCode string) error {
	defer observe("increment_clicks", time.Now())

	result, err := r.db.ExecContext(ctx, `UPDATE urls SET click_count = click_count + 1 WHERE short_code = $1`, shortCode)
	if err != nil {
		return errors.Wrapf(err, "increment clicks short_code=%s", shortCode)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "rows affected short_code=%s", shortCode)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
