package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/onnwee/kc-tender/chat"
	"github.com/onnwee/kc-tender/chatcommands"
	"github.com/onnwee/kc-tender/command"
	"github.com/onnwee/kc-tender/session"
	"github.com/onnwee/kc-tender/stats"
	"github.com/onnwee/kc-tender/tracker"
)

var replayStopOnError bool

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Replay a recorded chat log into the store",
	Long: `Replay feeds every line of a recorded chat log through extraction and
correlation into the configured database, as if the lines had been followed
live. Chat commands in the log are not answered.

Examples:
  # Import a session recorded earlier
  LOCAL_PLAYER=Zezima kc-tender replay chat-2024-01-15.log`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&replayStopOnError, "stop-on-error", false,
		"Stop on the first malformed line instead of skipping it")
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open chat log: %w", err)
	}
	defer func() { _ = f.Close() }()

	events, skipped, err := chat.ParseFile(f)
	if err != nil {
		return err
	}
	for _, e := range skipped {
		if replayStopOnError {
			return e
		}
		slog.Debug("skipping chat log line", slog.Any("err", e))
	}

	database, dialect, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB(database)

	store, err := stats.NewSQLStore(database, dialect)
	if err != nil {
		return err
	}
	st := stats.New(store)

	local, err := cfg.Local()
	if err != nil {
		return err
	}
	players := &chatcommands.Service{}
	players.SetLocal(local)

	// No commands are registered: replayed lines only feed the store.
	loop := session.New(session.Config{
		Tracker:  tracker.New(st, slog.Default()),
		Registry: command.NewRegistry(command.NewPipeline(1, slog.Default()), slog.Default()),
		Players:  players,
		Logger:   slog.Default(),
	})
	for _, ev := range events {
		loop.Handle(ctx, ev)
	}

	slog.Info("replay finished",
		slog.String("file", args[0]),
		slog.Int("events", len(events)),
		slog.Int("skipped", len(skipped)),
		slog.String("player", players.Local().Name))
	return nil
}
