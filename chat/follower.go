package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nxadm/tail"

	"github.com/onnwee/kc-tender/session"
)

// Sink accepts session events.
type Sink interface {
	Enqueue(ctx context.Context, ev session.Event) error
}

// FollowerConfig holds configuration for following a chat log.
type FollowerConfig struct {
	// ReOpen reopens the file when it's truncated or recreated (tail -F).
	ReOpen bool

	// Poll uses polling instead of inotify (more compatible but less efficient).
	Poll bool

	// MustExist requires the file to exist before starting (false = wait for creation).
	MustExist bool

	// FromStart reads from the beginning of the file instead of the end.
	FromStart bool
}

// Follower feeds every line appended to a chat log file into a Sink.
type Follower struct {
	Path   string
	Config FollowerConfig
	Logger *slog.Logger
}

// Run follows the file until ctx is done or the sink stops accepting events.
func (f *Follower) Run(ctx context.Context, sink Sink) error {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "chat_follower"), slog.String("path", f.Path))

	location := &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	if f.Config.FromStart {
		location = &tail.SeekInfo{Offset: 0, Whence: io.SeekStart}
	}
	t, err := tail.TailFile(f.Path, tail.Config{
		Follow:    true,
		ReOpen:    f.Config.ReOpen,
		Poll:      f.Config.Poll,
		MustExist: f.Config.MustExist,
		Location:  location,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("opening tail: %w", err)
	}
	defer func() {
		if err := t.Stop(); err != nil {
			logger.Debug("tail stop", slog.Any("err", err))
		}
		t.Cleanup()
	}()

	logger.Info("following chat log")
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				logger.Warn("tail error", slog.Any("err", line.Err))
				continue
			}
			ev, ok, err := ParseLine(line.Text)
			if err != nil {
				logger.Debug("skipping chat log line", slog.Any("err", err))
				continue
			}
			if !ok {
				continue
			}
			if err := sink.Enqueue(ctx, ev); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("enqueue chat log line: %w", err)
			}
		}
	}
}
