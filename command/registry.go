package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/kc-tender/telemetry"
)

// LookupFunc answers a command found in msg. It may rewrite msg with
// SetResponse and must handle its own failures.
type LookupFunc func(ctx context.Context, msg *Message, text string)

// SubmitFunc prepares the submission of text. It returns false when there is
// nothing to submit. The returned Job runs on the pipeline.
type SubmitFunc func(ctx context.Context, text string) (Job, bool)

// Command is the capability record registered for one prefix.
type Command struct {
	Prefix string
	Lookup LookupFunc
	Submit SubmitFunc // optional
}

// Registry maps command prefixes to their operations. Register every
// command before the first Dispatch or Submit.
type Registry struct {
	commands []Command
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewRegistry returns an empty registry submitting through p.
func NewRegistry(p *Pipeline, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{pipeline: p, logger: logger.With(slog.String("component", "commands"))}
}

// Register appends c. Earlier registrations take precedence.
func (r *Registry) Register(c Command) {
	r.commands = append(r.commands, c)
}

// Prefixes returns the registered prefixes in match order.
func (r *Registry) Prefixes() []string {
	out := make([]string, len(r.commands))
	for i, c := range r.commands {
		out[i] = c.Prefix
	}
	return out
}

// Match returns the first command whose prefix starts text.
func (r *Registry) Match(text string) (Command, bool) {
	for _, c := range r.commands {
		if hasPrefixFold(text, c.Prefix) {
			return c, true
		}
	}
	return Command{}, false
}

// Dispatch runs the lookup of the first command matching msg.Text. It
// reports whether a command matched.
func (r *Registry) Dispatch(ctx context.Context, msg *Message) bool {
	c, ok := r.Match(msg.Text)
	if !ok {
		return false
	}
	telemetry.IncCommand(c.Prefix)
	if c.Lookup != nil {
		r.lookup(ctx, c, msg)
	}
	return true
}

func (r *Registry) lookup(ctx context.Context, c Command, msg *Message) {
	ctx, span := telemetry.StartSpan(ctx, "kc-tender/command", "lookup",
		attribute.String("command", c.Prefix), attribute.String("chat_type", string(msg.Type)))
	var err error
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lookup %s panicked: %v", c.Prefix, rec)
			telemetry.IncLookupFailure(c.Prefix)
			r.logger.Error("lookup panicked", slog.String("command", c.Prefix), slog.Any("panic", rec))
		}
		telemetry.EndSpan(span, err)
	}()
	c.Lookup(ctx, msg, msg.Text)
}

// Submit prepares and starts the submission of in.Text. It reports whether a
// submission was initiated. When none is, in is resumed before returning;
// otherwise the returned task resumes it on completion.
func (r *Registry) Submit(ctx context.Context, in *Input) (*Task, bool) {
	c, ok := r.Match(in.Text)
	if !ok || c.Submit == nil {
		in.Resume()
		return nil, false
	}

	job, ok := r.prepare(ctx, c, in.Text)
	if !ok || job == nil {
		in.Resume()
		return nil, false
	}
	return r.pipeline.Go(ctx, c.Prefix, in, job), true
}

func (r *Registry) prepare(ctx context.Context, c Command, text string) (job Job, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("submit panicked before starting", slog.String("command", c.Prefix), slog.Any("panic", rec))
			job, ok = nil, false
		}
	}()
	return c.Submit(ctx, text)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
