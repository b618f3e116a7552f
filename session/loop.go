package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/onnwee/kc-tender/chatcommands"
	"github.com/onnwee/kc-tender/command"
	"github.com/onnwee/kc-tender/extract"
	"github.com/onnwee/kc-tender/telemetry"
	"github.com/onnwee/kc-tender/tracker"
)

// ErrStopped is returned by Enqueue once the loop has stopped.
var ErrStopped = errors.New("session loop stopped")

// DefaultBuffer is the event queue length used when Config.Buffer is zero.
const DefaultBuffer = 256

// Players holds the local player state.
type Players interface {
	Local() chatcommands.LocalPlayer
	SetLocal(chatcommands.LocalPlayer)
}

// Config wires a Loop.
type Config struct {
	Tracker  *tracker.Tracker
	Registry *command.Registry
	Players  Players
	Buffer   int
	Logger   *slog.Logger
}

// Loop is the session event loop. Run must be called from exactly one
// goroutine; Enqueue is safe from any goroutine.
type Loop struct {
	tracker  *tracker.Tracker
	registry *command.Registry
	players  Players
	logger   *slog.Logger

	events  chan Event
	wake    chan struct{}
	stopped chan struct{}
	stop    sync.Once

	mu      sync.Mutex
	resumed []Input

	// state is only touched by the goroutine handling events.
	state tracker.State
}

// New returns a loop that is not yet running.
func New(cfg Config) *Loop {
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultBuffer
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		tracker:  cfg.Tracker,
		registry: cfg.Registry,
		players:  cfg.Players,
		logger:   logger.With(slog.String("component", "session")),
		events:   make(chan Event, cfg.Buffer),
		wake:     make(chan struct{}, 1),
		stopped:  make(chan struct{}),
	}
}

// Enqueue queues ev, blocking while the queue is full.
func (l *Loop) Enqueue(ctx context.Context, ev Event) error {
	select {
	case <-l.stopped:
		return ErrStopped
	default:
	}
	select {
	case l.events <- ev:
		return nil
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run handles events until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stop.Do(func() { close(l.stopped) })
	l.logger.Info("session loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("session loop stopped")
			return nil
		case ev := <-l.events:
			l.Handle(ctx, ev)
		case <-l.wake:
		}
		l.drainResumed(ctx)
	}
}

// State returns the current correlation state. It is only meaningful on the
// goroutine handling events.
func (l *Loop) State() tracker.State { return l.state }

// Handle processes one event synchronously. Callers other than Run must not
// run concurrently with Run.
func (l *Loop) Handle(ctx context.Context, ev Event) {
	switch ev := ev.(type) {
	case Chat:
		l.handleChat(ctx, ev)
	case Input:
		l.handleInput(ctx, ev)
	case KillLog:
		l.storeErr(ctx, "kill log", l.tracker.ApplyKillLog(ctx, l.players.Local().Name, ev.Entries))
	case PlayerKills:
		local := l.players.Local()
		l.storeErr(ctx, "player kills", l.tracker.ApplyPlayerKills(ctx, local.Name, local.World, ev.Kills, ev.Deaths))
	case WildernessStats:
		kills, deaths, ok := extract.WildernessStats(ev.Text)
		if !ok {
			return
		}
		local := l.players.Local()
		l.storeErr(ctx, "wilderness statistics", l.tracker.ApplyPlayerKills(ctx, local.Name, local.World, kills, deaths))
	case PlayerVars:
		l.storeErr(ctx, "player vars", l.tracker.ApplyPlayerVars(ctx, l.players.Local().Name, ev.QuestPoints, ev.GambleCount))
	case AccountChanged:
		if ev.Player.Name != l.players.Local().Name {
			l.state = tracker.State{}
		}
		l.players.SetLocal(ev.Player)
		l.logger.Info("local player changed",
			slog.String("player", ev.Player.Name),
			slog.String("account", string(ev.Player.Account)))
	default:
		l.logger.Warn("unknown event", slog.Any("event", ev))
	}
	l.drainResumed(ctx)
}

func (l *Loop) handleChat(ctx context.Context, ev Chat) {
	msg := ev.Message
	if msg == nil {
		return
	}
	telemetry.IncLines()

	if msg.Type.IsGame() {
		r := extract.Extract(msg.Text)
		if r.Matched() {
			telemetry.IncExtraction(r.Kind.String())
		}
		player := l.players.Local().Name
		if player == "" {
			l.logger.Debug("no local player, dropping game line")
			return
		}
		st, err := l.tracker.Consume(ctx, player, l.state, r)
		l.state = st
		l.storeErr(ctx, r.Kind.String(), err)
		return
	}

	if !msg.Type.IsCommandSource() {
		return
	}
	if !l.registry.Dispatch(ctx, msg) || ev.Reply == nil {
		return
	}
	if resp, ok := msg.Response(); ok {
		ev.Reply(resp)
	}
}

func (l *Loop) handleInput(ctx context.Context, ev Input) {
	task, ok := l.registry.Submit(ctx, command.NewInput(ev.Text, l.resume(ev)))
	if ev.Result == nil {
		return
	}
	select {
	case ev.Result <- Submission{Initiated: ok, Task: task}:
	default:
		l.logger.Warn("submission result dropped", slog.String("text", ev.Text))
	}
}

// resume returns the callback releasing ev. It may run on any goroutine,
// including this one, so it only queues the input for drainResumed.
func (l *Loop) resume(ev Input) func() {
	return func() {
		l.mu.Lock()
		l.resumed = append(l.resumed, ev)
		l.mu.Unlock()
		select {
		case l.wake <- struct{}{}:
		default:
		}
	}
}

// drainResumed handles every released input as a line sent by the local
// player.
func (l *Loop) drainResumed(ctx context.Context) {
	l.mu.Lock()
	pending := l.resumed
	l.resumed = nil
	l.mu.Unlock()

	for _, in := range pending {
		typ := in.Type
		if typ == "" {
			typ = command.PublicChat
		}
		msg := command.NewMessage(typ, l.players.Local().Name, in.Text)
		l.handleChat(ctx, Chat{Message: msg, Reply: in.Reply})
	}
}

func (l *Loop) storeErr(ctx context.Context, what string, err error) {
	if err == nil {
		return
	}
	telemetry.IncStoreError()
	l.logger.WarnContext(ctx, "failed to store statistics", slog.String("source", what), slog.Any("err", err))
}
