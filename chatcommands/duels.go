package chatcommands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/onnwee/kc-tender/command"
	"github.com/onnwee/kc-tender/statsapi"
	"github.com/onnwee/kc-tender/stats"
)

func (s *Service) duelsLookup(ctx context.Context, msg *command.Message, text string) {
	if !s.Flags.Duels {
		return
	}
	player := s.player(msg)

	ctx, cancel := s.lookupContext(ctx)
	defer cancel()
	d, err := s.Chat.Duels(ctx, player)
	if err != nil {
		s.lookupFailed(ctx, DuelsCommand, "duels", err)
		return
	}
	streak := d.WinningStreak
	if streak == 0 {
		streak = -d.LosingStreak
	}
	s.respond(ctx, msg, fmt.Sprintf("Duel Arena wins: %s   losses: %s   streak: %s",
		humanize.Comma(int64(d.Wins)), humanize.Comma(int64(d.Losses)), humanize.Comma(int64(streak))))
}

func (s *Service) duelsSubmit(ctx context.Context, text string) (command.Job, bool) {
	player := s.Local().Name
	var (
		d    statsapi.Duels
		errs []error
	)
	read := func(category string, dst *int) {
		v, err := s.Stats.KillCount(ctx, player, category)
		errs = append(errs, err)
		*dst = v
	}
	read(stats.DuelWins, &d.Wins)
	read(stats.DuelLosses, &d.Losses)
	read(stats.DuelWinStreak, &d.WinningStreak)
	read(stats.DuelLoseStreak, &d.LosingStreak)
	if err := errors.Join(errs...); err != nil {
		s.storeFailed(ctx, DuelsCommand, err)
		return nil, false
	}
	if d.Wins <= 0 && d.Losses <= 0 && d.WinningStreak <= 0 && d.LosingStreak <= 0 {
		return nil, false
	}
	return func(ctx context.Context) error {
		return s.Chat.SubmitDuels(ctx, player, d)
	}, true
}

func (s *Service) playerKillsLookup(ctx context.Context, msg *command.Message, text string) {
	if !s.Flags.PlayerKills {
		return
	}
	player := s.player(msg)
	world := s.Local().World

	ctx, cancel := s.lookupContext(ctx)
	defer cancel()
	pk, err := s.Chat.PlayerKills(ctx, player)
	if err != nil {
		s.lookupFailed(ctx, PlayerKillsCommand, "player kills", err)
		return
	}

	kills, deaths, label := pk.Kills, pk.Deaths, ""
	switch {
	case world.Has(stats.WorldPvp):
		kills, deaths, label = pk.KillsPvp, pk.DeathsPvp, " (Pvp)"
	case world.Has(stats.WorldBounty):
		kills, deaths, label = pk.KillsBounty, pk.DeathsBounty, " (Bounty)"
	}
	s.respond(ctx, msg, fmt.Sprintf("Player kills%s: %s   deaths%s: %s   ratio: %s",
		label, humanize.Comma(int64(kills)), label, humanize.Comma(int64(deaths)), KillDeathRatio(kills, deaths)))
}

// KillDeathRatio formats kills/deaths with up to two decimals, or "N/A" when
// there are no deaths.
func KillDeathRatio(kills, deaths int) string {
	if deaths == 0 {
		return "N/A"
	}
	r := strconv.FormatFloat(float64(kills)/float64(deaths), 'f', 2, 64)
	return strings.TrimSuffix(strings.TrimRight(r, "0"), ".")
}

func (s *Service) playerKillsSubmit(ctx context.Context, text string) (command.Job, bool) {
	player := s.Local().Name
	var (
		pk   statsapi.PlayerKills
		errs []error
	)
	read := func(category string, dst *int) {
		v, err := s.Stats.KillCount(ctx, player, category)
		errs = append(errs, err)
		*dst = v
	}
	read(stats.PlayerKills, &pk.Kills)
	read(stats.PlayerDeaths, &pk.Deaths)
	read(stats.PlayerKills+" Bounty", &pk.KillsBounty)
	read(stats.PlayerDeaths+" Bounty", &pk.DeathsBounty)
	read(stats.PlayerKills+" Pvp", &pk.KillsPvp)
	read(stats.PlayerDeaths+" Pvp", &pk.DeathsPvp)
	if err := errors.Join(errs...); err != nil {
		s.storeFailed(ctx, PlayerKillsCommand, err)
		return nil, false
	}
	if pk.Kills <= 0 && pk.Deaths <= 0 && pk.KillsBounty <= 0 &&
		pk.DeathsBounty <= 0 && pk.KillsPvp <= 0 && pk.DeathsPvp <= 0 {
		return nil, false
	}
	return func(ctx context.Context) error {
		return s.Chat.SubmitPlayerKills(ctx, player, pk)
	}, true
}
