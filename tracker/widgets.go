package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/onnwee/kc-tender/stats"
)

// KillLogEntry is one row of the boss kill log as displayed, for example
// Name "Zulrah:" and Count "1,234".
type KillLogEntry struct {
	Name  string
	Count string
}

// ApplyKillLog stores every parseable kill log row whose count differs from
// the stored one. Unparseable rows are skipped.
func (t *Tracker) ApplyKillLog(ctx context.Context, player string, entries []KillLogEntry) error {
	var errs []error
	for _, e := range entries {
		boss := strings.TrimSpace(strings.ReplaceAll(e.Name, ":", ""))
		kc, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(e.Count), ",", ""))
		if boss == "" || err != nil {
			t.logger.Debug("skipping kill log row", slog.String("name", e.Name), slog.String("count", e.Count))
			continue
		}
		if err := t.setIfChanged(ctx, player, boss, kc); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ApplyPlayerKills stores kills and deaths read from the K/D overlay or the
// wilderness statistics board under the categories for world.
func (t *Tracker) ApplyPlayerKills(ctx context.Context, player string, world stats.World, kills, deaths int) error {
	suffix := world.PlayerKillsSuffix()
	return errors.Join(
		t.setIfChanged(ctx, player, stats.PlayerKills+suffix, kills),
		t.setIfChanged(ctx, player, stats.PlayerDeaths+suffix, deaths),
	)
}

// ApplyPlayerVars stores the local player's quest points and gamble count.
func (t *Tracker) ApplyPlayerVars(ctx context.Context, player string, questPoints, gambleCount int) error {
	return errors.Join(
		t.setIfChanged(ctx, player, stats.QuestPoints, questPoints),
		t.setIfChanged(ctx, player, stats.GambleCount, gambleCount),
	)
}

func (t *Tracker) setIfChanged(ctx context.Context, player, category string, value int) error {
	old, err := t.stats.KillCount(ctx, player, category)
	if err != nil {
		return fmt.Errorf("read %s: %w", category, err)
	}
	if old == value {
		return nil
	}
	if err := t.stats.SetKillCount(ctx, player, category, value); err != nil {
		return fmt.Errorf("store %s: %w", category, err)
	}
	return nil
}
