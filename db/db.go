// Package db provides database connection helpers and schema migration for the
// player stat table.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx postgres driver registered as 'pgx'
	_ "modernc.org/sqlite"             // pure Go sqlite driver registered as 'sqlite'
)

// Dialect selects the SQL flavour used for a connection.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ErrUnknownDialect is returned when a DSN or dialect name is not supported.
var ErrUnknownDialect = errors.New("unknown sql dialect")

// DriverName returns the database/sql driver registered for the dialect.
func (d Dialect) DriverName() (string, error) {
	switch d {
	case Postgres:
		return "pgx", nil
	case SQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, string(d))
	}
}

// DialectFromDSN infers the dialect from a DSN. postgres:// and postgresql://
// URLs select Postgres; file: URLs, ":memory:" and bare paths select SQLite.
func DialectFromDSN(dsn string) (Dialect, error) {
	switch {
	case dsn == "":
		return "", fmt.Errorf("%w: empty dsn", ErrUnknownDialect)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return Postgres, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return SQLite, nil
	case strings.HasPrefix(dsn, "file:"), dsn == ":memory:":
		return SQLite, nil
	case !strings.Contains(dsn, "://"):
		return SQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, dsn)
	}
}

// Connect opens a database handle for dsn and reports its dialect.
func Connect(dsn string) (*sql.DB, Dialect, error) {
	dialect, err := DialectFromDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	driver, err := dialect.DriverName()
	if err != nil {
		return nil, "", err
	}
	conn, err := sql.Open(driver, strings.TrimPrefix(dsn, "sqlite://"))
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == SQLite {
		// sqlite serializes writers; a single connection avoids SQLITE_BUSY
		// and keeps ":memory:" databases shared across queries.
		conn.SetMaxOpenConns(1)
	}
	return conn, dialect, nil
}

// Migrate applies idempotent schema changes for the given dialect.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	var stmts []string
	switch dialect {
	case Postgres:
		stmts = postgresSchema
	case SQLite:
		stmts = sqliteSchema
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDialect, string(dialect))
	}
	for i, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("%s migrate step %d failed: %w", dialect, i, err)
		}
	}
	return nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS player_stats (
		namespace TEXT NOT NULL,
		category TEXT NOT NULL,
		value BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ DEFAULT NOW(),
		PRIMARY KEY (namespace, category)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_player_stats_updated ON player_stats(updated_at)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS player_stats (
		namespace TEXT NOT NULL,
		category TEXT NOT NULL,
		value INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (namespace, category)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_player_stats_updated ON player_stats(updated_at)`,
}
