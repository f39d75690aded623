// Package metrics exposes Prometheus collectors for the candy machine workflows.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pcandy"

// Workflow outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics groups the collectors recorded by the orchestrator.
type Metrics struct {
	workflowTotal    *prometheus.CounterVec
	workflowDuration *prometheus.HistogramVec
	storageBytes     prometheus.Gauge
	catalogLines     prometheus.Counter
	itemsMinted      prometheus.Counter
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer
// to expose them on the default /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		workflowTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "workflow",
				Name:      "total",
				Help:      "Workflows submitted, by workflow and outcome",
			},
			[]string{"workflow", "outcome"},
		),
		workflowDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "workflow",
				Name:      "duration_seconds",
				Help:      "Time from first ledger query to submission or confirmation",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"workflow"},
		),
		storageBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "config_storage_bytes",
				Help:      "Storage allocated for the most recently initialized config account",
			},
		),
		catalogLines: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_lines_appended_total",
				Help:      "Catalog lines written to config accounts",
			},
		),
		itemsMinted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_minted_total",
				Help:      "Items minted through mint_nft",
			},
		),
	}
}

// ObserveWorkflow records one workflow run. A nil receiver is a no-op.
func (m *Metrics) ObserveWorkflow(workflow, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.workflowTotal.WithLabelValues(workflow, outcome).Inc()
	m.workflowDuration.WithLabelValues(workflow).Observe(elapsed.Seconds())
}

// SetStorageBytes records the size of a newly allocated config account.
func (m *Metrics) SetStorageBytes(size uint64) {
	if m == nil {
		return
	}
	m.storageBytes.Set(float64(size))
}

// AddCatalogLines counts appended catalog lines.
func (m *Metrics) AddCatalogLines(n int) {
	if m == nil {
		return
	}
	m.catalogLines.Add(float64(n))
}

// IncMinted counts one minted item.
func (m *Metrics) IncMinted() {
	if m == nil {
		return
	}
	m.itemsMinted.Inc()
}
