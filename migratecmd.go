package main

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onnwee/kc-tender/db"
)

var errVersionedOnly = errors.New("versioned migrations require a postgres DB_DSN")

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Inspect or change the database schema",
	Long: `Migrate manages the schema of the configured database. Postgres uses the
versioned migrations embedded in the binary; SQLite only supports 'up', which
applies the idempotent schema.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		database, dialect, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB(database)
		if dialect != db.Postgres {
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", dialect)
			return nil
		}
		return printMigrationVersion(cmd, database)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		database, err := connectPostgres()
		if err != nil {
			return err
		}
		defer closeDB(database)
		if err := db.MigrateDown(database); err != nil {
			return err
		}
		return printMigrationVersion(cmd, database)
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied migration version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		database, err := connectPostgres()
		if err != nil {
			return err
		}
		defer closeDB(database)
		return printMigrationVersion(cmd, database)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
}

// connectPostgres opens the configured database without touching its schema.
func connectPostgres() (*sql.DB, error) {
	database, dialect, err := db.Connect(cfg.DBDsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if dialect != db.Postgres {
		closeDB(database)
		return nil, errVersionedOnly
	}
	return database, nil
}

func printMigrationVersion(cmd *cobra.Command, database *sql.DB) error {
	version, dirty, err := db.GetMigrationVersion(database)
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", version, state)
	return nil
}
