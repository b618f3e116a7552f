// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/onnwee/kc-tender/db"
)

// SetupTestDB opens a migrated database. It uses TEST_PG_DSN when set and an
// in-memory SQLite database otherwise.
func SetupTestDB(t *testing.T) (*sql.DB, db.Dialect) {
	t.Helper()
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		dsn = "sqlite://:memory:"
	}
	return openMigrated(t, dsn)
}

// SetupPostgres opens a migrated Postgres database.
// It skips the test if TEST_PG_DSN environment variable is not set.
func SetupPostgres(t *testing.T) (*sql.DB, db.Dialect) {
	t.Helper()
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN not set")
	}
	return openMigrated(t, dsn)
}

func openMigrated(t *testing.T, dsn string) (*sql.DB, db.Dialect) {
	t.Helper()
	database, dialect, err := db.Connect(dsn)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.Setup(context.Background(), database, dialect); err != nil {
		_ = database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})
	return database, dialect
}
