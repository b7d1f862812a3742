// Package metrics exposes the orchestrator's Prometheus instrumentation:
// dispatch counters and latency histograms per provider/category, a
// circuit-breaker-state gauge, and a small HTTP surface (/metrics,
// /healthz) for scraping and liveness checks.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// DispatchTotal counts every dispatched attempt, labeled by
	// provider, category ("search" or "ai_response"), and outcome
	// ("success" or "failure").
	DispatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "omnisearch_dispatch_total",
		Help: "Total number of provider dispatch attempts.",
	}, []string{"provider", "category", "outcome"})

	// DispatchDurationSeconds observes the wall-clock latency of the
	// final call made to a provider during one dispatch (earlier inner
	// retries and the backoff between them are not included), labeled
	// by provider and category.
	DispatchDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "omnisearch_dispatch_duration_seconds",
		Help:    "Latency of a provider dispatch attempt in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "category"})

	// FallbackAttemptsTotal counts how many fallback providers a call
	// tried before success or exhaustion, labeled by category.
	FallbackAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "omnisearch_fallback_attempts_total",
		Help: "Number of fallback providers attempted per unified call.",
	}, []string{"category"})

	// CircuitBreakerOpen is 1 while a provider's breaker is open, 0
	// otherwise, labeled by provider.
	CircuitBreakerOpen = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "omnisearch_circuit_breaker_open",
		Help: "Whether a provider's circuit breaker is currently open (1) or closed (0).",
	}, []string{"provider"})

	// SnapshotSaveTotal counts persisted-state flush attempts, labeled
	// by outcome ("success" or "failure").
	SnapshotSaveTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "omnisearch_snapshot_save_total",
		Help: "Total number of persisted-state snapshot flush attempts.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(
		DispatchTotal,
		DispatchDurationSeconds,
		FallbackAttemptsTotal,
		CircuitBreakerOpen,
		SnapshotSaveTotal,
	)
}

// RecordDispatch records one provider dispatch attempt's outcome and latency.
func RecordDispatch(provider, category string, success bool, d time.Duration) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	DispatchTotal.WithLabelValues(provider, category, outcome).Inc()
	DispatchDurationSeconds.WithLabelValues(provider, category).Observe(d.Seconds())
}

// RecordFallbackAttempts records how many providers a unified call tried.
func RecordFallbackAttempts(category string, attempts int) {
	FallbackAttemptsTotal.WithLabelValues(category).Add(float64(attempts))
}

// SetCircuitBreakerOpen updates the breaker-state gauge for provider.
func SetCircuitBreakerOpen(provider string, open bool) {
	v := 0.0
	if open {
		v = 1.0
	}
	CircuitBreakerOpen.WithLabelValues(provider).Set(v)
}

// RecordSnapshotSave records the outcome of a persisted-state flush.
func RecordSnapshotSave(err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	SnapshotSaveTotal.WithLabelValues(outcome).Inc()
}

// Timer measures elapsed wall-clock time for a single operation.
type Timer struct {
	start time.Time
}

// NewTimer starts a Timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the duration since the Timer was created.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// RecordDispatch records the Timer's elapsed duration as a dispatch
// observation for provider/category/outcome.
func (t *Timer) RecordDispatch(provider, category string, success bool) {
	RecordDispatch(provider, category, success, t.Elapsed())
}
