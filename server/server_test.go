package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/onnwee/kc-tender/command"
	"github.com/onnwee/kc-tender/db"
	"github.com/onnwee/kc-tender/session"
	"github.com/onnwee/kc-tender/stats"
	"github.com/onnwee/kc-tender/testutil"
)

// newTestDB returns a migrated database, or a bare SQLite one when migrate
// is false.
func newTestDB(t *testing.T, migrate bool) testDB {
	t.Helper()
	if migrate {
		conn, dialect := testutil.SetupTestDB(t)
		return testDB{conn, dialect}
	}
	conn, dialect, err := db.Connect("sqlite://:memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return testDB{conn, dialect}
}

type testDB struct {
	conn    *sql.DB
	dialect db.Dialect
}

func (d testDB) stats(t *testing.T) *stats.Stats {
	t.Helper()
	st, err := stats.NewSQLStore(d.conn, d.dialect)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return stats.New(st)
}

// fakeSessions answers every Input with a fixed result.
type fakeSessions struct {
	initiated bool
	task      *command.Task
	got       []session.Event
	err       error
}

func (f *fakeSessions) Enqueue(_ context.Context, ev session.Event) error {
	if f.err != nil {
		return f.err
	}
	f.got = append(f.got, ev)
	if in, ok := ev.(session.Input); ok && in.Result != nil {
		in.Result <- session.Submission{Initiated: f.initiated, Task: f.task}
	}
	return nil
}

func newTestMux(t *testing.T, d testDB, sessions Sessions, opts Options) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewMux(ctx, NewHandlers(d.conn, d.stats(t), sessions), opts)
}

func TestHealthzOK(t *testing.T) {
	h := newTestMux(t, newTestDB(t, true), &fakeSessions{}, Options{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", rr.Code, rr.Body.String())
	}
	if got := rr.Body.String(); got != "ok" {
		t.Fatalf("expected ok body, got %q", got)
	}
	if rr.Header().Get("X-Correlation-ID") == "" {
		t.Error("expected a generated correlation id")
	}
}

func TestCorrelationIDReused(t *testing.T) {
	h := newTestMux(t, newTestDB(t, true), &fakeSessions{}, Options{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Correlation-ID", "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Correlation-ID"); got != "abc-123" {
		t.Errorf("correlation id = %q, want abc-123", got)
	}
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name       string
		migrate    bool
		wantCode   int
		wantStatus string
	}{
		{"ready", true, http.StatusOK, "ready"},
		{"schema missing", false, http.StatusServiceUnavailable, "not_ready"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestMux(t, newTestDB(t, tt.migrate), &fakeSessions{}, Options{})
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d, body=%s", tt.wantCode, rr.Code, rr.Body.String())
			}
			var resp map[string]string
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp["status"] != tt.wantStatus {
				t.Errorf("status = %q, want %q", resp["status"], tt.wantStatus)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestMux(t, newTestDB(t, true), &fakeSessions{}, Options{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	d := newTestDB(t, true)
	h := newTestMux(t, d, &fakeSessions{}, Options{})

	s := d.stats(t)
	ctx := context.Background()
	if err := s.SetKillCount(ctx, "Zezima", "Zulrah", 42); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPersonalBest(ctx, "Zezima", "Zulrah", 118); err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats/zezima", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", rr.Code, rr.Body.String())
	}
	var resp statsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.KillCounts["zulrah"] != 42 || resp.PersonalBests["zulrah"] != 118 {
		t.Errorf("stats = %+v", resp)
	}
}

func TestSubmitEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		sessions *fakeSessions
		wantCode int
		wantBody string
	}{
		{"initiated", `{"text":"!kc zulrah"}`, &fakeSessions{initiated: true}, http.StatusOK, `"initiated":true`},
		{"nothing to submit", `{"text":"!kc zulrah"}`, &fakeSessions{}, http.StatusOK, `"initiated":false`},
		{"empty text", `{"text":"  "}`, &fakeSessions{}, http.StatusBadRequest, "text required"},
		{"bad json", `{"text":`, &fakeSessions{}, http.StatusBadRequest, "invalid body"},
		{"unknown field", `{"txt":"!kc"}`, &fakeSessions{}, http.StatusBadRequest, "invalid body"},
		{"loop stopped", `{"text":"!qp"}`, &fakeSessions{err: session.ErrStopped}, http.StatusServiceUnavailable, "session unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestMux(t, newTestDB(t, true), tt.sessions, Options{})
			req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d, body=%s", tt.wantCode, rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", rr.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestSubmitEndpoint_Input(t *testing.T) {
	sessions := &fakeSessions{}
	h := newTestMux(t, newTestDB(t, true), sessions, Options{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(`{"text":" !pb vorkath "}`)))

	if len(sessions.got) != 1 {
		t.Fatalf("events = %d, want 1", len(sessions.got))
	}
	in, ok := sessions.got[0].(session.Input)
	if !ok || in.Text != "!pb vorkath" {
		t.Errorf("event = %#v", sessions.got[0])
	}
}

func TestStartAndShutdown(t *testing.T) {
	d := newTestDB(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Run server in background on a random port
	done := make(chan error, 1)
	go func() { done <- Start(ctx, NewHandlers(d.conn, d.stats(t), &fakeSessions{}), Options{}, "127.0.0.1:0") }()

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("server returned error: %v", err)
	}
}
