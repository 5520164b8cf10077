package db

import (
	"errors"
	"fmt"
	"strings"

	"quote-engine/migrations"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Migrate applies every pending embedded migration to the database at
// connStr. It is a no-op when the schema is current.
func Migrate(connStr string) error {
	m, err := newMigrator(connStr)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back every migration.
func MigrateDown(connStr string) error {
	m, err := newMigrator(connStr)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not roll back migrations: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied migration version and whether the last
// migration failed halfway.
func SchemaVersion(connStr string) (uint, bool, error) {
	m, err := newMigrator(connStr)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("could not read schema version: %w", err)
	}
	return version, dirty, nil
}

func newMigrator(connStr string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("could not open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, pgx5URL(connStr))
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

// pgx5URL rewrites a postgres:// URL to the scheme the pgx/v5 driver registers.
func pgx5URL(connStr string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if rest, ok := strings.CutPrefix(connStr, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return connStr
}
