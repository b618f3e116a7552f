package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/onnwee/kc-tender/chat"
	"github.com/onnwee/kc-tender/chatcommands"
	"github.com/onnwee/kc-tender/command"
	"github.com/onnwee/kc-tender/db"
	"github.com/onnwee/kc-tender/server"
	"github.com/onnwee/kc-tender/session"
	"github.com/onnwee/kc-tender/stats"
	"github.com/onnwee/kc-tender/statsapi"
	"github.com/onnwee/kc-tender/telemetry"
	"github.com/onnwee/kc-tender/tracker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tracker service",
	Long: `Run the session loop, the HTTP API (/healthz, /readyz, /metrics,
/stats/{player}, /submit) and the configured chat sources.

Chat sources:
  CHAT_LOG_PATH   follow a chat log file (tail -F)
  TWITCH_CHANNEL  answer commands in a Twitch channel (needs bot credentials)`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdownTracing, err := telemetry.InitTracing(cfg.OTLPEndpoint, cfg.ServiceName, version)
	if err != nil {
		return fmt.Errorf("tracing initialization failed: %w", err)
	}
	defer shutdownTracing()

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
	httpClient := &http.Client{Timeout: cfg.LookupTimeout}
	svc := &chatcommands.Service{
		Flags:    cfg.Flags(),
		Stats:    st,
		Chat:     &statsapi.Client{BaseURL: cfg.StatsAPIURL, HTTPClient: httpClient},
		Hiscores: &statsapi.HiscoreClient{BaseURL: cfg.StatsAPIURL, HTTPClient: httpClient},
		Items:    &statsapi.ItemClient{BaseURL: cfg.StatsAPIURL, HTTPClient: httpClient},
		Timeout:  cfg.LookupTimeout,
		Logger:   slog.Default(),
	}
	svc.SetLocal(local)

	pipeline := command.NewPipeline(cfg.SubmitWorkers, slog.Default())
	registry := command.NewRegistry(pipeline, slog.Default())
	svc.Register(registry)

	loop := session.New(session.Config{
		Tracker:  tracker.New(st, slog.Default()),
		Registry: registry,
		Players:  svc,
		Buffer:   cfg.SessionBuffer,
		Logger:   slog.Default(),
	})

	slog.Info("starting kc-tender",
		slog.String("version", version),
		slog.String("player", local.Name),
		slog.String("db", string(dialect)),
		slog.Bool("tracing", telemetry.IsTracingEnabled()),
		slog.Any("commands", registry.Prefixes()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop.Run(gctx) })

	handlers := server.NewHandlers(database, st, loop)
	opts := server.Options{
		SubmitToken:     cfg.SubmitToken,
		SubmitRateLimit: cfg.SubmitRateLimit,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
	}
	g.Go(func() error { return server.Start(gctx, handlers, opts, cfg.HTTPAddr) })

	if cfg.ChatLogPath != "" {
		follower := &chat.Follower{
			Path:   cfg.ChatLogPath,
			Config: chat.FollowerConfig{ReOpen: true, FromStart: cfg.ChatLogFromStart},
			Logger: slog.Default(),
		}
		g.Go(func() error { return follower.Run(gctx, loop) })
	} else {
		slog.Info("chat log follower disabled (CHAT_LOG_PATH not set)")
	}

	if cfg.TwitchChannel != "" {
		bridge, err := chat.NewTwitchBridge(cfg, slog.Default())
		if err != nil {
			slog.Warn("twitch bridge disabled", slog.Any("err", err))
		} else {
			g.Go(func() error { return bridge.Run(gctx, loop) })
		}
	} else {
		slog.Info("twitch bridge disabled (TWITCH_CHANNEL not set)")
	}

	err = g.Wait()
	slog.Info("shutting down, waiting for pending submissions")
	pipeline.Wait()
	return err
}

func openDB(ctx context.Context) (*sql.DB, db.Dialect, error) {
	database, dialect, err := db.Connect(cfg.DBDsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open db: %w", err)
	}
	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	slog.Info("running database migrations", slog.String("component", "db_migrate"), slog.String("dialect", string(dialect)))
	if err := db.Setup(migrateCtx, database, dialect); err != nil {
		closeDB(database)
		return nil, "", fmt.Errorf("failed to migrate db: %w", err)
	}
	return database, dialect, nil
}

func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		slog.Error("failed to close database", slog.Any("err", err))
	}
}
