// Command kc-tender tracks kill counts and personal bests from game chat and
// answers chat commands with local and shared statistics.
//
// Subcommands:
//   - serve (default): runs the session loop, the HTTP API, the chat log
//     follower and the Twitch bridge until SIGINT/SIGTERM.
//   - replay: feeds a recorded chat log through extraction into the store.
//   - stats: prints the stored statistics of a player.
//   - migrate: applies, rolls back or reports the database schema version.
//   - version: prints build information.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/onnwee/kc-tender/config"
)

var (
	// Version information (set by ldflags)
	version = "dev"
	commit  = "none"
	date    = "unknown"

	envFile string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kc-tender",
	Short: "Kill count and personal best tracker for game chat",
	Long: `kc-tender reads game chat, records kill counts, personal bests and
other statistics of the local player, and answers chat commands such as
!kc, !pb and !lvl from the local store and the shared statistics service.

Without a subcommand it runs the service (same as 'kc-tender serve').`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"Optional .env file loaded before reading the environment")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// version must work without a valid environment
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kc-tender %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

// cfg is loaded once by setup for every subcommand.
var cfg *config.Config

func setup(*cobra.Command, []string) error {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load(envFile)

	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	cfg = c
	setupLogging(cfg.LogLevel, cfg.LogFormat)
	return nil
}

// setupLogging installs the default slog handler. Defaults: level=info, format=text.
func setupLogging(level, format string) {
	lvl := slog.LevelInfo
	unknown := false
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		unknown = true
	}
	format = strings.ToLower(format) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		format = "text"
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	if unknown {
		slog.Warn("unknown LOG_LEVEL, using info", slog.String("value", level))
	}
	slog.Debug("logger initialized", slog.String("level", lvl.String()), slog.String("format", format))
}
