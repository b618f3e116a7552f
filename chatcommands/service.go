// Package chatcommands implements the chat command lookups and submissions:
// kill counts, personal bests, duels, player kills, quest points, gamble
// counts, levels, combat level, clue scrolls and item prices.
//
// Lookups answer a command by rewriting the message with data from the
// remote statistics service or the hiscores. Submissions push the local
// player's stored statistics to the remote service.
package chatcommands

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/onnwee/kc-tender/command"
	"github.com/onnwee/kc-tender/statsapi"
	"github.com/onnwee/kc-tender/stats"
	"github.com/onnwee/kc-tender/telemetry"
)

// Command prefixes.
const (
	TotalCommand        = "!total"
	CombatCommand       = "!cmb"
	PriceCommand        = "!price"
	LevelCommand        = "!lvl"
	CluesCommand        = "!clues"
	KillCountCommand    = "!kc"
	QuestPointsCommand  = "!qp"
	PersonalBestCommand = "!pb"
	GambleCountCommand  = "!gc"
	DuelsCommand        = "!duels"
	PlayerKillsCommand  = "!pks"
)

// ChatService is the remote statistics service.
type ChatService interface {
	KillCount(ctx context.Context, player, boss string) (int, error)
	SubmitKillCount(ctx context.Context, player, boss string, kc int) error
	PersonalBest(ctx context.Context, player, boss string) (int, error)
	SubmitPersonalBest(ctx context.Context, player, boss string, seconds int) error
	QuestPoints(ctx context.Context, player string) (int, error)
	SubmitQuestPoints(ctx context.Context, player string, qp int) error
	GambleCount(ctx context.Context, player string) (int, error)
	SubmitGambleCount(ctx context.Context, player string, gc int) error
	Duels(ctx context.Context, player string) (statsapi.Duels, error)
	SubmitDuels(ctx context.Context, player string, d statsapi.Duels) error
	PlayerKills(ctx context.Context, player string) (statsapi.PlayerKills, error)
	SubmitPlayerKills(ctx context.Context, player string, pk statsapi.PlayerKills) error
}

// Hiscores looks players up on the hiscores.
type Hiscores interface {
	Lookup(ctx context.Context, player string, endpoint statsapi.Endpoint) (*statsapi.HiscoreResult, error)
}

// Items searches item prices.
type Items interface {
	Search(ctx context.Context, query string) ([]statsapi.ItemPrice, error)
}

// Flags enables command lookups. Submissions are not gated.
type Flags struct {
	Level       bool // !total, !cmb, !lvl
	Price       bool
	Clue        bool
	KillCount   bool
	QuestPoints bool
	PB          bool
	GambleCount bool
	Duels       bool
	PlayerKills bool
}

// AllEnabled turns every command on.
func AllEnabled() Flags {
	return Flags{true, true, true, true, true, true, true, true, true}
}

// Service holds the collaborators of every command.
type Service struct {
	Flags    Flags
	Stats    *stats.Stats
	Chat     ChatService
	Hiscores Hiscores
	Items    Items
	// Timeout bounds each lookup's remote calls. Zero means no bound.
	Timeout time.Duration
	Logger  *slog.Logger

	mu    sync.RWMutex
	local LocalPlayer
}

// SetLocal replaces the local player state.
func (s *Service) SetLocal(p LocalPlayer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.local = p
}

// Local returns the local player state.
func (s *Service) Local() LocalPlayer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.local
}

func (s *Service) logger() *slog.Logger {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	return l.With(slog.String("component", "chatcommands"))
}

// Register adds every command to reg in match order.
func (s *Service) Register(reg *command.Registry) {
	reg.Register(command.Command{Prefix: TotalCommand, Lookup: s.totalLevelLookup})
	reg.Register(command.Command{Prefix: CombatCommand, Lookup: s.combatLevelLookup})
	reg.Register(command.Command{Prefix: PriceCommand, Lookup: s.itemPriceLookup})
	reg.Register(command.Command{Prefix: LevelCommand, Lookup: s.skillLookup})
	reg.Register(command.Command{Prefix: CluesCommand, Lookup: s.clueLookup})
	reg.Register(command.Command{Prefix: KillCountCommand, Lookup: s.killCountLookup, Submit: s.killCountSubmit})
	reg.Register(command.Command{Prefix: QuestPointsCommand, Lookup: s.questPointsLookup, Submit: s.questPointsSubmit})
	reg.Register(command.Command{Prefix: PersonalBestCommand, Lookup: s.personalBestLookup, Submit: s.personalBestSubmit})
	reg.Register(command.Command{Prefix: GambleCountCommand, Lookup: s.gambleCountLookup, Submit: s.gambleCountSubmit})
	reg.Register(command.Command{Prefix: DuelsCommand, Lookup: s.duelsLookup, Submit: s.duelsSubmit})
	reg.Register(command.Command{Prefix: PlayerKillsCommand, Lookup: s.playerKillsLookup, Submit: s.playerKillsSubmit})
}

// lookupContext bounds a lookup's remote calls by Timeout.
func (s *Service) lookupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// lookupFailed logs a remote failure. The message keeps its original text.
func (s *Service) lookupFailed(ctx context.Context, cmd, what string, err error) {
	telemetry.IncLookupFailure(cmd)
	s.logger().DebugContext(ctx, "unable to lookup "+what, slog.String("command", cmd), slog.Any("err", err))
}

// respond rewrites msg.
func (s *Service) respond(ctx context.Context, msg *command.Message, response string) {
	s.logger().DebugContext(ctx, "setting response", slog.String("response", response))
	msg.SetResponse(response)
}

// argument returns the trimmed text after prefix, or "" when there is none.
func argument(text, prefix string) string {
	if len(text) <= len(prefix) {
		return ""
	}
	return strings.TrimSpace(text[len(prefix):])
}
