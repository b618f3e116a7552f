// Package config loads environment variables and provides a typed Config used across the service.
// It applies sensible defaults so the binary can run locally with minimal setup.
// For required credentials (e.g., Twitch chat), use ValidateChatReady.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/onnwee/kc-tender/chatcommands"
)

type Config struct {
	// Database
	DBDsn string `env:"DB_DSN" envDefault:"sqlite://kc-tender.db"`

	// HTTP
	HTTPAddr           string   `env:"HTTP_ADDR" envDefault:":8080"`
	SubmitToken        string   `env:"SUBMIT_TOKEN"`
	SubmitRateLimit    int      `env:"RATE_LIMIT_REQUESTS_PER_IP" envDefault:"10"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Tracing; an empty endpoint disables it
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"kc-tender"`

	// Twitch
	TwitchChannel     string `env:"TWITCH_CHANNEL"`
	TwitchBotUsername string `env:"TWITCH_BOT_USERNAME"`
	TwitchOAuthToken  string `env:"TWITCH_OAUTH_TOKEN"`

	// TwitchOwner is the login whose commands are sent as the local player.
	// Defaults to TwitchChannel.
	TwitchOwner string `env:"TWITCH_OWNER"`

	// Local player
	LocalPlayer string   `env:"LOCAL_PLAYER"`
	AccountType string   `env:"ACCOUNT_TYPE" envDefault:"normal"`
	WorldTypes  []string `env:"WORLD_TYPES" envSeparator:","`

	// Chat log follower; an empty path disables it
	ChatLogPath      string `env:"CHAT_LOG_PATH"`
	ChatLogFromStart bool   `env:"CHAT_LOG_FROM_START"`

	// Remote statistics service
	StatsAPIURL   string        `env:"STATS_API_URL" envDefault:"https://api.runelite.net/runelite-1.6.0"`
	LookupTimeout time.Duration `env:"LOOKUP_TIMEOUT" envDefault:"5s"`
	SubmitWorkers int           `env:"SUBMIT_WORKERS" envDefault:"4"`

	SessionBuffer int `env:"SESSION_BUFFER" envDefault:"256"`

	Commands Commands `envPrefix:"CMD_"`
}

// Commands enables individual chat command lookups.
type Commands struct {
	Level       bool `env:"LVL" envDefault:"true"`
	Price       bool `env:"PRICE" envDefault:"true"`
	Clue        bool `env:"CLUE" envDefault:"true"`
	KillCount   bool `env:"KILLCOUNT" envDefault:"true"`
	QuestPoints bool `env:"QP" envDefault:"true"`
	PB          bool `env:"PB" envDefault:"true"`
	GambleCount bool `env:"GC" envDefault:"true"`
	Duels       bool `env:"DUELS" envDefault:"true"`
	PlayerKills bool `env:"PKS" envDefault:"true"`
}

// Load reads environment variables and applies defaults. It doesn't fail if Twitch creds are missing;
// use ValidateChatReady() when you require the chat bridge. Invalid values are reported.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TwitchOwner == "" {
		cfg.TwitchOwner = cfg.TwitchChannel
	}
	if _, err := cfg.Local(); err != nil {
		return nil, err
	}
	if cfg.SubmitWorkers <= 0 {
		return nil, fmt.Errorf("invalid SUBMIT_WORKERS %d: must be positive", cfg.SubmitWorkers)
	}
	return cfg, nil
}

// ValidateChatReady checks required fields when the Twitch bridge is enabled.
func (c *Config) ValidateChatReady() error {
	if c.TwitchChannel == "" || c.TwitchBotUsername == "" || c.TwitchOAuthToken == "" {
		return fmt.Errorf("missing twitch env: require TWITCH_CHANNEL, TWITCH_BOT_USERNAME, TWITCH_OAUTH_TOKEN")
	}
	return nil
}

// Flags returns the command lookup switches.
func (c *Config) Flags() chatcommands.Flags {
	return chatcommands.Flags{
		Level:       c.Commands.Level,
		Price:       c.Commands.Price,
		Clue:        c.Commands.Clue,
		KillCount:   c.Commands.KillCount,
		QuestPoints: c.Commands.QuestPoints,
		PB:          c.Commands.PB,
		GambleCount: c.Commands.GambleCount,
		Duels:       c.Commands.Duels,
		PlayerKills: c.Commands.PlayerKills,
	}
}

// Local returns the configured local player.
func (c *Config) Local() (chatcommands.LocalPlayer, error) {
	account, err := chatcommands.ParseAccountType(c.AccountType)
	if err != nil {
		return chatcommands.LocalPlayer{}, fmt.Errorf("invalid ACCOUNT_TYPE: %w", err)
	}
	world, err := chatcommands.ParseWorld(c.WorldTypes)
	if err != nil {
		return chatcommands.LocalPlayer{}, fmt.Errorf("invalid WORLD_TYPES: %w", err)
	}
	return chatcommands.LocalPlayer{
		Name:    strings.TrimSpace(c.LocalPlayer),
		Account: account,
		World:   world,
	}, nil
}
