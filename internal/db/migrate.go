package db

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Schema migrations ship inside the binary so a deploy is the binary plus a
// database URL; nothing to copy alongside it.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// Run brings the facilities schema (campuses through notifications) up to the
// latest version. A database already at the latest version is not an error.
func Run(databaseURL string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("migrate new: %w", err)
	}
	defer m.Close()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		slog.Info("schema already current")
	case err != nil:
		return fmt.Errorf("migrate up: %w", err)
	default:
		if v, dirty, verr := m.Version(); verr == nil {
			slog.Info("schema migrated", "version", v, "dirty", dirty)
		}
	}
	return nil
}
