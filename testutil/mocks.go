package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Submission is one POST received by a MockStatsServer.
type Submission struct {
	Op    string
	Query url.Values
}

// MockStatsServer is an in-memory stand-in for the remote chat endpoints.
// kc, pb, qp and gc are stored and answered per name (and boss); other
// endpoints answer 404 unless a handler is registered under their path.
type MockStatsServer struct {
	*httptest.Server
	Handlers map[string]http.HandlerFunc

	mu          sync.Mutex
	values      map[string]int
	submissions []Submission
}

// counters maps the single value endpoints to their submit parameter.
var counters = map[string]string{"kc": "kc", "pb": "pb", "qp": "qp", "gc": "gc"}

// NewMockStatsServer creates a new mock statistics server
func NewMockStatsServer(t *testing.T) *MockStatsServer {
	t.Helper()
	m := &MockStatsServer{
		Handlers: make(map[string]http.HandlerFunc),
		values:   make(map[string]int),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.Close)
	return m
}

func (m *MockStatsServer) serve(w http.ResponseWriter, r *http.Request) {
	if handler, ok := m.Handlers[r.URL.Path]; ok {
		handler(w, r)
		return
	}
	op, ok := strings.CutPrefix(r.URL.Path, "/chat/")
	param, known := counters[op]
	if !ok || !known {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	q := r.URL.Query()
	key := valueKey(op, q.Get("name"), q.Get("boss"))

	m.mu.Lock()
	defer m.mu.Unlock()
	if r.Method == http.MethodPost {
		n, err := strconv.Atoi(q.Get(param))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		m.values[key] = n
		m.submissions = append(m.submissions, Submission{Op: op, Query: q})
		return
	}
	v, ok := m.values[key]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // test mock response
}

// Set stores a value answered by GET /chat/<op>. boss is empty for qp and gc.
func (m *MockStatsServer) Set(op, name, boss string, v int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[valueKey(op, name, boss)] = v
}

// Submissions returns every POST received so far.
func (m *MockStatsServer) Submissions() []Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Submission(nil), m.submissions...)
}

// MockJSON answers every request to path with v.
func (m *MockStatsServer) MockJSON(path string, v any) {
	m.Handlers[path] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // test mock response
	}
}

func valueKey(op, name, boss string) string {
	return op + "|" + strings.ToLower(name) + "|" + strings.ToLower(boss)
}
