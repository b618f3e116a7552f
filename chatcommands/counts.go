package chatcommands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/onnwee/kc-tender/alias"
	"github.com/onnwee/kc-tender/command"
	"github.com/onnwee/kc-tender/extract"
	"github.com/onnwee/kc-tender/stats"
)

func (s *Service) killCountLookup(ctx context.Context, msg *command.Message, text string) {
	if !s.Flags.KillCount {
		return
	}
	search := argument(text, KillCountCommand)
	if search == "" {
		return
	}
	boss := alias.Boss(search)
	player := s.player(msg)

	ctx, cancel := s.lookupContext(ctx)
	defer cancel()
	kc, err := s.Chat.KillCount(ctx, player, boss)
	if err != nil {
		s.lookupFailed(ctx, KillCountCommand, "kill count", err)
		return
	}
	s.respond(ctx, msg, fmt.Sprintf("%s kill count: %s", boss, humanize.Comma(int64(kc))))
}

func (s *Service) killCountSubmit(ctx context.Context, text string) (command.Job, bool) {
	search := argument(text, KillCountCommand)
	if search == "" {
		return nil, false
	}
	boss := alias.Boss(search)
	player := s.Local().Name

	kc, err := s.Stats.KillCount(ctx, player, boss)
	if err != nil {
		s.storeFailed(ctx, KillCountCommand, err)
		return nil, false
	}
	if kc <= 0 {
		return nil, false
	}
	return func(ctx context.Context) error {
		return s.Chat.SubmitKillCount(ctx, player, boss, kc)
	}, true
}

func (s *Service) personalBestLookup(ctx context.Context, msg *command.Message, text string) {
	if !s.Flags.PB {
		return
	}
	search := argument(text, PersonalBestCommand)
	if search == "" {
		return
	}
	boss := alias.Boss(search)
	player := s.player(msg)

	ctx, cancel := s.lookupContext(ctx)
	defer cancel()
	pb, err := s.Chat.PersonalBest(ctx, player, boss)
	if err != nil {
		s.lookupFailed(ctx, PersonalBestCommand, "personal best", err)
		return
	}
	s.respond(ctx, msg, fmt.Sprintf("%s personal best: %s", boss, extract.FormatDuration(pb)))
}

func (s *Service) personalBestSubmit(ctx context.Context, text string) (command.Job, bool) {
	search := argument(text, PersonalBestCommand)
	if search == "" {
		return nil, false
	}
	boss := alias.Boss(search)
	player := s.Local().Name

	pb, err := s.Stats.PersonalBest(ctx, player, boss)
	if err != nil {
		s.storeFailed(ctx, PersonalBestCommand, err)
		return nil, false
	}
	if pb <= 0 {
		return nil, false
	}
	return func(ctx context.Context) error {
		return s.Chat.SubmitPersonalBest(ctx, player, boss, pb)
	}, true
}

func (s *Service) questPointsLookup(ctx context.Context, msg *command.Message, text string) {
	if !s.Flags.QuestPoints {
		return
	}
	player := s.player(msg)

	ctx, cancel := s.lookupContext(ctx)
	defer cancel()
	qp, err := s.Chat.QuestPoints(ctx, player)
	if err != nil {
		s.lookupFailed(ctx, QuestPointsCommand, "quest points", err)
		return
	}
	s.respond(ctx, msg, "Quest points: "+humanize.Comma(int64(qp)))
}

func (s *Service) questPointsSubmit(ctx context.Context, text string) (command.Job, bool) {
	player := s.Local().Name
	qp, err := s.Stats.KillCount(ctx, player, stats.QuestPoints)
	if err != nil {
		s.storeFailed(ctx, QuestPointsCommand, err)
		return nil, false
	}
	if qp <= 0 {
		return nil, false
	}
	return func(ctx context.Context) error {
		return s.Chat.SubmitQuestPoints(ctx, player, qp)
	}, true
}

func (s *Service) gambleCountLookup(ctx context.Context, msg *command.Message, text string) {
	if !s.Flags.GambleCount {
		return
	}
	player := s.player(msg)

	ctx, cancel := s.lookupContext(ctx)
	defer cancel()
	gc, err := s.Chat.GambleCount(ctx, player)
	if err != nil {
		s.lookupFailed(ctx, GambleCountCommand, "gamble count", err)
		return
	}
	s.respond(ctx, msg, "Barbarian Assault High-level gambles: "+humanize.Comma(int64(gc)))
}

func (s *Service) gambleCountSubmit(ctx context.Context, text string) (command.Job, bool) {
	player := s.Local().Name
	gc, err := s.Stats.KillCount(ctx, player, stats.GambleCount)
	if err != nil {
		s.storeFailed(ctx, GambleCountCommand, err)
		return nil, false
	}
	if gc <= 0 {
		return nil, false
	}
	return func(ctx context.Context) error {
		return s.Chat.SubmitGambleCount(ctx, player, gc)
	}, true
}

// storeFailed logs a local store read that prevented a submission.
func (s *Service) storeFailed(ctx context.Context, cmd string, err error) {
	s.logger().WarnContext(ctx, "unable to read stored statistics", slog.String("command", cmd), slog.Any("err", err))
}
