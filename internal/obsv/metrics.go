// Package obsv registers the Prometheus collectors shared across the
// sentinel binaries: one struct of promauto-registered
// counters/histograms, built once per process and passed down by
// reference instead of relying on package-level globals.
package obsv

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter/histogram the monitor, anchor, and export
// binaries increment. Fields are exported so components can hold a plain
// *Metrics and call .Inc()/.Observe() directly, same as escrow.Metrics.
type Metrics struct {
	SolverUnknownTotal      prometheus.Counter
	EvalDisagreementsTotal  prometheus.Counter
	VerdictTransitionsTotal prometheus.Counter
	EvidenceEmittedTotal    prometheus.Counter
	ParseErrorsTotal        prometheus.Counter

	BatchesFlushedTotal      prometheus.Counter
	BatchLossTotal           prometheus.Counter
	AnchorSubmitFailureTotal prometheus.Counter
	AnchorSubmitRetryTotal   prometheus.Counter
	MerkleLeavesTotal        prometheus.Counter
	FlushDuration            prometheus.Histogram

	ExportRendersTotal prometheus.Counter
}

// NewMetrics registers all collectors against the default Prometheus
// registry. Call once per process; cmd/ binaries hold the returned pointer
// for the lifetime of the process.
func NewMetrics() *Metrics {
	return &Metrics{
		SolverUnknownTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_solver_unknown_total",
			Help: "Ticks where the incremental SAT core returned Unknown (timeout or solver error).",
		}),
		EvalDisagreementsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_eval_disagreements_total",
			Help: "Ticks where the pure evaluator and the SAT core disagreed on verdict.",
		}),
		VerdictTransitionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_verdict_transitions_total",
			Help: "Property verdict transitions detected by the monitor.",
		}),
		EvidenceEmittedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_evidence_emitted_total",
			Help: "Evidence records emitted by the monitor.",
		}),
		ParseErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_parse_errors_total",
			Help: "Inbound trace messages dropped for failing to parse.",
		}),
		BatchesFlushedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_batches_flushed_total",
			Help: "Merkle batches successfully flushed and anchored.",
		}),
		BatchLossTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_batch_loss_total",
			Help: "Batches lost to a durable-store write failure at flush.",
		}),
		AnchorSubmitFailureTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_anchor_submit_failure_total",
			Help: "Chain submission failures during flush.",
		}),
		AnchorSubmitRetryTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_anchor_submit_retry_total",
			Help: "Retained batches retried at a later hour boundary.",
		}),
		MerkleLeavesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_merkle_leaves_total",
			Help: "Evidence byte blobs folded into a Merkle tree across all flushes.",
		}),
		FlushDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentinel_flush_duration_seconds",
			Help:    "Wall-clock time spent in one anchor flush, including chain submission.",
			Buckets: prometheus.DefBuckets,
		}),
		ExportRendersTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sentinel_export_renders_total",
			Help: "Hourly XML export renders produced.",
		}),
	}
}
