package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/onnwee/kc-tender/db"
)

const table = "player_stats"

// SQLStore is a Store persisted in the player_stats table.
type SQLStore struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

// NewSQLStore wraps an open database whose schema has been migrated with
// db.Migrate or db.RunMigrations.
func NewSQLStore(conn *sql.DB, dialect db.Dialect) (*SQLStore, error) {
	var ph sq.PlaceholderFormat
	switch dialect {
	case db.Postgres:
		ph = sq.Dollar
	case db.SQLite:
		ph = sq.Question
	default:
		return nil, fmt.Errorf("%w: %q", db.ErrUnknownDialect, string(dialect))
	}
	return &SQLStore{db: conn, sb: sq.StatementBuilder.PlaceholderFormat(ph)}, nil
}

func (s *SQLStore) Get(ctx context.Context, group, key string) (int, bool, error) {
	query, args, err := s.sb.Select("value").
		From(table).
		Where(sq.Eq{"namespace": strings.ToLower(group), "category": strings.ToLower(key)}).
		ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("build select: %w", err)
	}
	var v int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get %s/%s: %w", group, key, err)
	}
	return v, true, nil
}

func (s *SQLStore) Set(ctx context.Context, group, key string, value int) error {
	query, args, err := s.sb.Insert(table).
		Columns("namespace", "category", "value", "updated_at").
		Values(strings.ToLower(group), strings.ToLower(key), value, time.Now().UTC()).
		Suffix("ON CONFLICT (namespace, category) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set %s/%s: %w", group, key, err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, group string) (map[string]int, error) {
	query, args, err := s.sb.Select("category", "value").
		From(table).
		Where(sq.Eq{"namespace": strings.ToLower(group)}).
		OrderBy("category").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", group, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			k string
			v int
		)
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", group, err)
		}
		out[k] = v
	}
	return out, rows.Err()
}
