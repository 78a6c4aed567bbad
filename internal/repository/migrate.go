package repository

import (
	"embed"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies all pending schema migrations to databaseURL.
func Migrate(databaseURL string, logger logrus.FieldLogger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "open migrations")
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return errors.Wrap(err, "init migrate")
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			logger.WithField("source_err", sourceErr).WithField("db_err", dbErr).Warn("closing migrator")
		}
	}()

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return errors.Wrap(err, "read schema version")
	}
	if dirty {
		return errors.Errorf("schema version %d is dirty, fix it manually", version)
	}

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			logger.WithField("version", version).Info("schema up to date")
			return nil
		}
		return errors.Wrap(err, "apply migrations")
	}

	version, _, _ = m.Version()
	logger.WithField("version", version).Info("schema migrated")
	return nil
}
