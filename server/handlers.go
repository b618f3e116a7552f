package server

import (
	"context"
	"database/sql"

	"github.com/onnwee/kc-tender/session"
	"github.com/onnwee/kc-tender/stats"
)

// Sessions accepts events for the session loop.
type Sessions interface {
	Enqueue(ctx context.Context, ev session.Event) error
}

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	db       *sql.DB
	stats    *stats.Stats
	sessions Sessions
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(db *sql.DB, st *stats.Stats, sessions Sessions) *Handlers {
	return &Handlers{
		db:       db,
		stats:    st,
		sessions: sessions,
	}
}
