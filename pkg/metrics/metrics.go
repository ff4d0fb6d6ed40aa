// Package metrics defines the Prometheus collectors of a mining run and the
// two ways of exposing them: a scrape endpoint while the run is alive and a
// Pushgateway push when a batch run finishes.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds all collectors of the miner.
type Metrics struct {
	RunsTotal           *prometheus.CounterVec
	StageDuration       *prometheus.HistogramVec
	DocumentsProcessed  prometheus.Counter
	TokensExcluded      *prometheus.CounterVec
	CandidatesByOrder   *prometheus.GaugeVec
	DataQualityWarnings *prometheus.CounterVec
	TokenCacheRequests  *prometheus.CounterVec
	SinkWrites          *prometheus.CounterVec
	CircuitBreakerState *prometheus.GaugeVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. Passing a fresh
// prometheus.NewRegistry() keeps tests and repeated runs independent.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mining_runs_total",
				Help: "Mining runs by outcome (ok, configuration, invariant, input, failure).",
			},
			[]string{"status"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mining_stage_duration_seconds",
				Help:    "Duration of each pipeline stage in seconds.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
			},
			[]string{"stage"},
		),
		DocumentsProcessed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mining_documents_processed_total",
				Help: "Documents tokenized.",
			},
		),
		TokensExcluded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mining_tokens_excluded_total",
				Help: "Tokens removed from the analysis stream by exclusion rule. Texts served from the token cache are not counted.",
			},
			[]string{"rule"},
		),
		CandidatesByOrder: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mining_candidates",
				Help: "Candidates retained in the last run per n-gram order.",
			},
			[]string{"order"},
		),
		DataQualityWarnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mining_data_quality_warnings_total",
				Help: "Non-fatal data-quality warnings by document field.",
			},
			[]string{"field"},
		),
		TokenCacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mining_token_cache_requests_total",
				Help: "Token cache lookups by result (hit, miss, error).",
			},
			[]string{"result"},
		),
		SinkWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mining_sink_writes_total",
				Help: "Result sink writes by sink and status.",
			},
			[]string{"sink", "status"},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.RunsTotal,
		m.StageDuration,
		m.DocumentsProcessed,
		m.TokensExcluded,
		m.CandidatesByOrder,
		m.DataQualityWarnings,
		m.TokenCacheRequests,
		m.SinkWrites,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the scrape handler for the registry behind m.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry behind m.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.gatherer
}

// Push sends the current values to a Pushgateway, grouped by run.
func (m *Metrics) Push(ctx context.Context, url, job, runID string) error {
	pusher := push.New(url, job).Gatherer(m.gatherer)
	if runID != "" {
		pusher = pusher.Grouping("run_id", runID)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}
	return nil
}
