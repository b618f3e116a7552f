// Package stats holds the durable per-player key/value record of observed game
// statistics.
//
// Values live in groups named "<namespace>.<lower-cased player>" and are keyed
// by the lower-cased category:
//
//	killcount.alice   zulrah        -> 42
//	personalbest.alice zulrah       -> 150
//
// A Store reports unseen keys as absent rather than failing; callers treat
// absence as zero.
package stats

import (
	"context"
	"maps"
	"strings"
	"sync"
)

// Store is a key/value store of integers. Implementations serialize their own
// reads and writes.
type Store interface {
	// Get returns the value stored under (group, key) and whether it exists.
	Get(ctx context.Context, group, key string) (int, bool, error)
	// Set overwrites the value stored under (group, key).
	Set(ctx context.Context, group, key string, value int) error
	// List returns every key and value stored in group.
	List(ctx context.Context, group string) (map[string]int, error)
}

// MemoryStore is a Store backed by a map. The zero value is not usable; use
// NewMemoryStore.
type MemoryStore struct {
	mu     sync.RWMutex
	groups map[string]map[string]int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{groups: make(map[string]map[string]int)}
}

func (m *MemoryStore) Get(_ context.Context, group, key string) (int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.groups[strings.ToLower(group)][strings.ToLower(key)]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, group, key string, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := strings.ToLower(group)
	if m.groups[g] == nil {
		m.groups[g] = make(map[string]int)
	}
	m.groups[g][strings.ToLower(key)] = value
	return nil
}

func (m *MemoryStore) List(_ context.Context, group string) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := maps.Clone(m.groups[strings.ToLower(group)])
	if out == nil {
		out = map[string]int{}
	}
	return out, nil
}
