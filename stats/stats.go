package stats

import (
	"context"
	"strings"
)

// Namespaces of the persisted layout.
const (
	NamespaceKillCount    = "killcount"
	NamespacePersonalBest = "personalbest"
)

// Fixed categories written by the correlation engine and the submit
// operations. They live in the kill count namespace.
const (
	DuelWins       = "Duel Arena Wins"
	DuelLosses     = "Duel Arena Losses"
	DuelWinStreak  = "Duel Arena Win Streak"
	DuelLoseStreak = "Duel Arena Lose Streak"
	QuestPoints    = "Quest Points"
	GambleCount    = "Gamble Count"
	PlayerKills    = "Player Kills"
	PlayerDeaths   = "Player Deaths"
)

// Stats reads and writes player statistics through a Store, lower-casing
// player and category consistently. Absent values read as 0.
type Stats struct {
	store Store
}

// New wraps store.
func New(store Store) *Stats {
	return &Stats{store: store}
}

// Store returns the underlying store.
func (s *Stats) Store() Store { return s.store }

// Group returns the store group for a namespace and player.
func Group(namespace, player string) string {
	return namespace + "." + strings.ToLower(strings.TrimSpace(player))
}

func (s *Stats) get(ctx context.Context, namespace, player, category string) (int, error) {
	v, _, err := s.store.Get(ctx, Group(namespace, player), strings.ToLower(category))
	return v, err
}

func (s *Stats) set(ctx context.Context, namespace, player, category string, value int) error {
	return s.store.Set(ctx, Group(namespace, player), strings.ToLower(category), value)
}

// KillCount returns the stored count for (player, category).
func (s *Stats) KillCount(ctx context.Context, player, category string) (int, error) {
	return s.get(ctx, NamespaceKillCount, player, category)
}

// SetKillCount stores the count for (player, category).
func (s *Stats) SetKillCount(ctx context.Context, player, category string, n int) error {
	return s.set(ctx, NamespaceKillCount, player, category, n)
}

// PersonalBest returns the stored personal best in seconds.
func (s *Stats) PersonalBest(ctx context.Context, player, category string) (int, error) {
	return s.get(ctx, NamespacePersonalBest, player, category)
}

// SetPersonalBest stores the personal best in seconds.
func (s *Stats) SetPersonalBest(ctx context.Context, player, category string, seconds int) error {
	return s.set(ctx, NamespacePersonalBest, player, category, seconds)
}

// KillCounts returns every stored count for player.
func (s *Stats) KillCounts(ctx context.Context, player string) (map[string]int, error) {
	return s.store.List(ctx, Group(NamespaceKillCount, player))
}

// PersonalBests returns every stored personal best for player.
func (s *Stats) PersonalBests(ctx context.Context, player string) (map[string]int, error) {
	return s.store.List(ctx, Group(NamespacePersonalBest, player))
}
