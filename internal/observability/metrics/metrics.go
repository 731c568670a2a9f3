// Package metrics defines the auction metric surface and its Prometheus
// implementation.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AuctionMetrics is recorded by services, queue workers and the realtime hub.
type AuctionMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	RecordBidPlaced(ctx context.Context, roundKind string)
	RecordBidWithdrawn(ctx context.Context)
	RecordPlayerOutcome(ctx context.Context, status string, count int)
	RecordTiebreakerCreated(ctx context.Context)
	RecordRealtimeDropped(ctx context.Context)
}

// PrometheusMetrics implements AuctionMetrics on a Prometheus registry.
type PrometheusMetrics struct {
	attempts    *prometheus.CounterVec
	successes   *prometheus.CounterVec
	failures    *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	bidsPlaced  *prometheus.CounterVec
	bidsRemoved prometheus.Counter
	outcomes    *prometheus.CounterVec
	tiebreakers prometheus.Counter
	dropped     prometheus.Counter
}

// NewPrometheus registers the auction collectors on reg.
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusMetrics {
	m := &PrometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operation_attempts_total",
			Help: "Service operations started.",
		}, []string{"operation", "service"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operation_success_total",
			Help: "Service operations that completed successfully.",
		}, []string{"operation", "service"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operation_failure_total",
			Help: "Service operations that failed or returned a failure result.",
		}, []string{"operation", "service"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "operation_duration_seconds",
			Help:    "Service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		bidsPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "bids_placed_total",
			Help: "Bid rows inserted.",
		}, []string{"round_kind"}),
		bidsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "bids_withdrawn_total",
			Help: "Bid rows withdrawn.",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "player_outcomes_total",
			Help: "Round player statuses written at completion.",
		}, []string{"status"}),
		tiebreakers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tiebreakers_created_total",
			Help: "Tiebreaker rounds spawned.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "realtime_dropped_frames_total",
			Help: "Realtime frames dropped for slow subscribers.",
		}),
	}

	reg.MustRegister(
		m.attempts, m.successes, m.failures, m.durations,
		m.bidsPlaced, m.bidsRemoved, m.outcomes, m.tiebreakers, m.dropped,
	)
	return m
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.durations.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordBidPlaced(_ context.Context, roundKind string) {
	m.bidsPlaced.WithLabelValues(roundKind).Inc()
}

func (m *PrometheusMetrics) RecordBidWithdrawn(_ context.Context) {
	m.bidsRemoved.Inc()
}

func (m *PrometheusMetrics) RecordPlayerOutcome(_ context.Context, status string, count int) {
	if count <= 0 {
		return
	}
	m.outcomes.WithLabelValues(status).Add(float64(count))
}

func (m *PrometheusMetrics) RecordTiebreakerCreated(_ context.Context) {
	m.tiebreakers.Inc()
}

func (m *PrometheusMetrics) RecordRealtimeDropped(_ context.Context) {
	m.dropped.Inc()
}

// NoOpMetrics discards everything.
type NoOpMetrics struct{}

// NewNoop returns a metrics sink that records nothing.
func NewNoop() AuctionMetrics { return NoOpMetrics{} }

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoOpMetrics) RecordBidPlaced(context.Context, string)                                {}
func (NoOpMetrics) RecordBidWithdrawn(context.Context)                                     {}
func (NoOpMetrics) RecordPlayerOutcome(context.Context, string, int)                       {}
func (NoOpMetrics) RecordTiebreakerCreated(context.Context)                                {}
func (NoOpMetrics) RecordRealtimeDropped(context.Context)                                  {}
