package command

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/kc-tender/telemetry"
)

// Job is the network half of a submission.
type Job func(ctx context.Context) error

// Task is the future of one submission. It completes after the suspended
// input has been resumed.
type Task struct {
	Name string
	ID   string

	done chan struct{}
	err  error
}

// Done is closed when the job has finished and the input has been resumed.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the job's error once Done is closed.
func (t *Task) Err() error {
	<-t.done
	return t.err
}

// Wait blocks until the task completes or ctx ends.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DefaultWorkers is the number of submissions that may run at once.
const DefaultWorkers = 4

// Pipeline runs submission jobs off the caller's goroutine. Jobs are never
// retried or cancelled; a failure is logged and dropped.
type Pipeline struct {
	sem    chan struct{}
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPipeline returns a pipeline running at most workers jobs concurrently.
func NewPipeline(workers int, logger *slog.Logger) *Pipeline {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		sem:    make(chan struct{}, workers),
		logger: logger.With(slog.String("component", "submit_pipeline")),
	}
}

// Go starts job and returns immediately. in is resumed exactly once when the
// job returns, fails or panics.
func (p *Pipeline) Go(ctx context.Context, name string, in *Input, job Job) *Task {
	t := &Task{Name: name, ID: uuid.NewString(), done: make(chan struct{})}

	// In-flight submissions outlive the request that started them.
	jobCtx := telemetry.WithCorrelation(context.WithoutCancel(ctx), t.ID)
	logger := p.logger.With(slog.String("corr", t.ID), slog.String("command", name))

	telemetry.SubmitStarted()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(t.done)
		defer p.resume(logger, in)

		p.sem <- struct{}{}
		took := telemetry.TimeFunc(telemetry.SubmitDuration, func() {
			t.err = runJob(jobCtx, name, job)
		})
		<-p.sem

		telemetry.SubmitFinished(t.err)
		if t.err != nil {
			logger.Warn("submission failed", slog.Any("err", t.err))
			return
		}
		logger.Debug("submission complete", slog.Duration("took", took))
	}()
	return t
}

// runJob runs job inside a "submit" span. A panic is returned as an error.
func runJob(ctx context.Context, name string, job Job) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "kc-tender/command", "submit", attribute.String("command", name))
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("submit %s panicked: %v", name, r)
		}
		telemetry.EndSpan(span, err)
	}()
	return job(ctx)
}

// resume releases in, containing a panicking continuation so that it cannot
// take the worker down with it.
func (p *Pipeline) resume(logger *slog.Logger, in *Input) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("resume panicked", slog.Any("panic", r))
		}
	}()
	in.Resume()
}

// Wait blocks until every started job has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}
