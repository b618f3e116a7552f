// Package tracker reconciles extracted chat lines into stat store writes.
//
// A kill count line and its personal best duration line describe the same
// event but arrive in either order. State carries the unmatched half between
// consecutive calls to Consume. It is owned by the caller and passed in and
// out explicitly:
//
//	st := tracker.State{}
//	for _, line := range lines {
//		st, err = t.Consume(ctx, player, st, extract.Extract(line))
//	}
//
// A pending subject survives exactly one following line. A pending duration
// waits until the next kill count, however many lines later.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/onnwee/kc-tender/extract"
	"github.com/onnwee/kc-tender/stats"
)

// State is the correlation state of one session.
type State struct {
	PendingSubject    string
	HasPendingSubject bool
	PendingSeconds    int
	HasPendingSeconds bool
}

// Pending reports whether either slot is set.
func (s State) Pending() bool {
	return s.HasPendingSubject || s.HasPendingSeconds
}

func (s State) withSubject(subject string) State {
	s.PendingSubject, s.HasPendingSubject = subject, true
	return s
}

func (s State) withSeconds(seconds int) State {
	s.PendingSeconds, s.HasPendingSeconds = seconds, true
	return s
}

func (s State) clearSubject() State {
	s.PendingSubject, s.HasPendingSubject = "", false
	return s
}

func (s State) clearSeconds() State {
	s.PendingSeconds, s.HasPendingSeconds = 0, false
	return s
}

// Tracker applies extraction results and widget observations to a stat store.
type Tracker struct {
	stats  *stats.Stats
	logger *slog.Logger
}

// New returns a Tracker writing to s. A nil logger uses slog.Default.
func New(s *stats.Stats, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{stats: s, logger: logger.With(slog.String("component", "tracker"))}
}

// Consume applies r for player and returns the next correlation state. On a
// store error the returned state is still the correct next state; the error
// describes the write that was lost.
func (t *Tracker) Consume(ctx context.Context, player string, st State, r extract.Result) (State, error) {
	switch r.Kind {
	case extract.KillCount:
		return t.killCount(ctx, player, st, r)
	case extract.Duration:
		return t.duration(ctx, player, st, r)
	}

	st = st.clearSubject()
	switch r.Kind {
	case extract.FixedCount:
		if err := t.stats.SetKillCount(ctx, player, r.Subject, r.Count); err != nil {
			return st, fmt.Errorf("store %s count: %w", r.Subject, err)
		}
	case extract.DuelWin:
		return st, t.duelWin(ctx, player, r)
	case extract.DuelLoss:
		if err := t.stats.SetKillCount(ctx, player, stats.DuelLosses, r.Count); err != nil {
			return st, fmt.Errorf("store duel losses: %w", err)
		}
	}
	return st, nil
}

func (t *Tracker) killCount(ctx context.Context, player string, st State, r extract.Result) (State, error) {
	var err error
	if werr := t.stats.SetKillCount(ctx, player, r.Subject, r.Count); werr != nil {
		err = fmt.Errorf("store %s count: %w", r.Subject, werr)
	}
	if !st.HasPendingSeconds {
		return st.withSubject(r.Subject), err
	}

	seconds := st.PendingSeconds
	st = st.clearSubject().clearSeconds()
	if werr := t.stats.SetPersonalBest(ctx, player, r.Subject, seconds); werr != nil {
		return st, errors.Join(err, fmt.Errorf("store %s personal best: %w", r.Subject, werr))
	}
	t.logger.Debug("personal best attributed to later count",
		slog.String("subject", r.Subject), slog.Int("seconds", seconds))
	return st, err
}

func (t *Tracker) duration(ctx context.Context, player string, st State, r extract.Result) (State, error) {
	if !st.HasPendingSubject {
		return st.withSeconds(r.Seconds), nil
	}

	subject := st.PendingSubject
	st = st.clearSubject()
	if err := t.stats.SetPersonalBest(ctx, player, subject, r.Seconds); err != nil {
		return st, fmt.Errorf("store %s personal best: %w", subject, err)
	}
	return st, nil
}

func (t *Tracker) duelWin(ctx context.Context, player string, r extract.Result) error {
	oldWins, err := t.stats.KillCount(ctx, player, stats.DuelWins)
	if err != nil {
		return fmt.Errorf("read duel wins: %w", err)
	}
	winStreak, err := t.stats.KillCount(ctx, player, stats.DuelWinStreak)
	if err != nil {
		return fmt.Errorf("read duel win streak: %w", err)
	}
	loseStreak, err := t.stats.KillCount(ctx, player, stats.DuelLoseStreak)
	if err != nil {
		return fmt.Errorf("read duel lose streak: %w", err)
	}

	switch {
	case r.Won && r.Count > oldWins:
		winStreak++
		loseStreak = 0
	case !r.Won:
		loseStreak++
		winStreak = 0
	default:
		t.logger.Warn("duel win reported without an increase in wins",
			slog.Int("old_wins", oldWins), slog.Int("wins", r.Count))
	}

	writes := []struct {
		category string
		value    int
	}{
		{stats.DuelWins, r.Count},
		{stats.DuelWinStreak, winStreak},
		{stats.DuelLoseStreak, loseStreak},
	}
	for _, w := range writes {
		if err := t.stats.SetKillCount(ctx, player, w.category, w.value); err != nil {
			return fmt.Errorf("store %s: %w", w.category, err)
		}
	}
	return nil
}
