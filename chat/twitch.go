package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/onnwee/kc-tender/command"
	"github.com/onnwee/kc-tender/config"
	"github.com/onnwee/kc-tender/session"
)

// ircClient is the part of *twitch.Client the bridge uses.
type ircClient interface {
	OnPrivateMessage(callback func(message twitch.PrivateMessage))
	Join(channels ...string)
	Connect() error
	Disconnect() error
	Reply(channel, parentMsgID, text string)
}

// TwitchBridge relays a Twitch channel's chat into the session. Viewers'
// messages are public chat lines whose lookup answers are replied in the
// channel. The owner's messages are sent as the local player, so their
// commands submit before being answered.
type TwitchBridge struct {
	channel string
	owner   string
	client  ircClient
	logger  *slog.Logger
}

// NewTwitchBridge builds a bridge from cfg. It fails when the Twitch
// credentials are incomplete.
func NewTwitchBridge(cfg *config.Config, logger *slog.Logger) (*TwitchBridge, error) {
	if err := cfg.ValidateChatReady(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TwitchBridge{
		channel: cfg.TwitchChannel,
		owner:   cfg.TwitchOwner,
		client:  twitch.NewClient(cfg.TwitchBotUsername, cfg.TwitchOAuthToken),
		logger:  logger.With(slog.String("component", "twitch_bridge"), slog.String("channel", cfg.TwitchChannel)),
	}, nil
}

// Run connects and relays messages until ctx is done.
func (b *TwitchBridge) Run(ctx context.Context, sink Sink) error {
	b.client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		b.handle(ctx, sink, msg)
	})

	// Handle context cancellation by closing the client
	go func() {
		<-ctx.Done()
		if err := b.client.Disconnect(); err != nil {
			b.logger.Debug("twitch disconnect", slog.Any("err", err))
		}
	}()

	b.client.Join(b.channel)
	b.logger.Info("twitch bridge connecting")
	err := b.client.Connect()
	if ctx.Err() != nil || errors.Is(err, twitch.ErrClientDisconnected) {
		return nil
	}
	return err
}

func (b *TwitchBridge) handle(ctx context.Context, sink Sink, msg twitch.PrivateMessage) {
	reply := func(text string) {
		b.client.Reply(msg.Channel, msg.ID, text)
	}

	var ev session.Event
	if b.owner != "" && strings.EqualFold(msg.User.Name, b.owner) {
		ev = session.Input{Text: msg.Message, Type: command.PublicChat, Reply: reply}
	} else {
		name := msg.User.DisplayName
		if name == "" {
			name = msg.User.Name
		}
		ev = session.Chat{Message: command.NewMessage(command.PublicChat, name, msg.Message), Reply: reply}
	}

	if err := sink.Enqueue(ctx, ev); err != nil && ctx.Err() == nil {
		b.logger.Warn("failed to relay twitch message", slog.String("user", msg.User.Name), slog.Any("err", err))
	}
}
