package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// ErrDirty is returned when a previous migration stopped half way. The schema
// is in an unknown state and is never patched over automatically.
var ErrDirty = errors.New("database is in dirty migration state")

// dirtyErr wraps ErrDirty with the version that needs manual intervention.
func dirtyErr(version uint) error {
	return fmt.Errorf("%w at version %d - manual intervention required", ErrDirty, version)
}

// upErr classifies an error returned by (*migrate.Migrate).Up.
func upErr(err error) error {
	var dirty migrate.ErrDirty
	if errors.As(err, &dirty) {
		return dirtyErr(uint(dirty.Version))
	}
	return fmt.Errorf("failed to run migrations: %w", err)
}

// newMigrator builds a migrate instance over the embedded migrations.
func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// RunMigrations applies the versioned Postgres migrations embedded in the
// binary. It is idempotent and safe to run multiple times.
//
// Migration files follow the naming convention:
//
//	000001_description.up.sql   - applies the migration
//	000001_description.down.sql - reverts the migration
func RunMigrations(db *sql.DB) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("no new migrations to apply", slog.String("component", "db_migrate"))
			return nil
		}
		return upErr(err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return dirtyErr(version)
	}

	slog.Info("migrations applied successfully",
		slog.Uint64("version", uint64(version)),
		slog.String("component", "db_migrate"))
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(db *sql.DB) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Steps(-1); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("no migrations to roll back", slog.String("component", "db_migrate"))
			return nil
		}
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// GetMigrationVersion returns the current migration version and dirty state.
// A database without applied migrations reports version 0.
func GetMigrationVersion(db *sql.DB) (version uint, dirty bool, err error) {
	m, err := newMigrator(db)
	if err != nil {
		return 0, false, err
	}
	v, d, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return v, d, nil
}

// Setup brings the schema up to date for the dialect. Postgres uses the
// versioned migrations and falls back to the idempotent DDL when they cannot
// run, except for a dirty migration state which is returned as ErrDirty.
// SQLite always uses the idempotent DDL.
func Setup(ctx context.Context, db *sql.DB, dialect Dialect) error {
	if dialect == Postgres {
		err := RunMigrations(db)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrDirty) {
			return err
		}
		slog.Warn("versioned migrations failed, falling back to embedded schema",
			slog.Any("err", err), slog.String("component", "db_migrate"))
	}
	return Migrate(ctx, db, dialect)
}
