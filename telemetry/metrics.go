// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	LinesProcessed       prometheus.Counter
	Extractions          *prometheus.CounterVec // label: kind
	CommandsDispatched   *prometheus.CounterVec // label: command
	LookupFailures       *prometheus.CounterVec // label: command
	SubmissionsStarted   prometheus.Counter
	SubmissionsSucceeded prometheus.Counter
	SubmissionsFailed    prometheus.Counter
	StoreErrors          prometheus.Counter

	// Histograms (seconds)
	SubmitDuration        prometheus.Observer
	RemoteRequestDuration *prometheus.HistogramVec // label: op

	// Gauges
	SubmitsInFlight prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		LinesProcessed = promauto.NewCounter(prometheus.CounterOpts{Name: "kc_chat_lines_total", Help: "Number of chat lines processed by the session loop"})
		Extractions = promauto.NewCounterVec(prometheus.CounterOpts{Name: "kc_extractions_total", Help: "Number of chat lines recognized, by result kind"}, []string{"kind"})
		CommandsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{Name: "kc_commands_total", Help: "Number of chat commands dispatched to a lookup"}, []string{"command"})
		LookupFailures = promauto.NewCounterVec(prometheus.CounterOpts{Name: "kc_lookup_failures_total", Help: "Number of lookups that left the message unchanged because of a remote failure"}, []string{"command"})
		SubmissionsStarted = promauto.NewCounter(prometheus.CounterOpts{Name: "kc_submissions_started_total", Help: "Number of submissions handed to the pipeline"})
		SubmissionsSucceeded = promauto.NewCounter(prometheus.CounterOpts{Name: "kc_submissions_succeeded_total", Help: "Number of submissions that completed without error"})
		SubmissionsFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "kc_submissions_failed_total", Help: "Number of submissions that failed or panicked"})
		StoreErrors = promauto.NewCounter(prometheus.CounterOpts{Name: "kc_store_errors_total", Help: "Number of stat store writes that failed on the event path"})
		SubmitDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "kc_submit_duration_seconds", Help: "Submission job duration seconds", Buckets: prometheus.DefBuckets})
		RemoteRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{Name: "kc_remote_request_duration_seconds", Help: "Remote statistics service request duration seconds", Buckets: prometheus.DefBuckets}, []string{"op"})
		SubmitsInFlight = promauto.NewGauge(prometheus.GaugeOpts{Name: "kc_submits_in_flight", Help: "Current number of running submission jobs"})
	})
}

// The helpers below are safe to call before Init; they do nothing then.

// IncLines counts one processed chat line.
func IncLines() {
	if LinesProcessed != nil {
		LinesProcessed.Inc()
	}
}

// IncExtraction counts one recognized line of the given kind.
func IncExtraction(kind string) {
	if Extractions != nil {
		Extractions.WithLabelValues(kind).Inc()
	}
}

// IncCommand counts one dispatched command.
func IncCommand(command string) {
	if CommandsDispatched != nil {
		CommandsDispatched.WithLabelValues(command).Inc()
	}
}

// IncLookupFailure counts one failed lookup.
func IncLookupFailure(command string) {
	if LookupFailures != nil {
		LookupFailures.WithLabelValues(command).Inc()
	}
}

// IncStoreError counts one failed store write.
func IncStoreError() {
	if StoreErrors != nil {
		StoreErrors.Inc()
	}
}

// SubmitStarted records a submission entering the pipeline.
func SubmitStarted() {
	if SubmissionsStarted != nil {
		SubmissionsStarted.Inc()
	}
	if SubmitsInFlight != nil {
		SubmitsInFlight.Inc()
	}
}

// SubmitFinished records the outcome of a submission. The job duration is
// observed separately through TimeFunc and SubmitDuration.
func SubmitFinished(err error) {
	if SubmitsInFlight != nil {
		SubmitsInFlight.Dec()
	}
	if err != nil {
		if SubmissionsFailed != nil {
			SubmissionsFailed.Inc()
		}
		return
	}
	if SubmissionsSucceeded != nil {
		SubmissionsSucceeded.Inc()
	}
}

// ObserveRemote records the duration of one remote service call.
func ObserveRemote(op string, d time.Duration) {
	if RemoteRequestDuration != nil {
		RemoteRequestDuration.WithLabelValues(op).Observe(d.Seconds())
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
