// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the compound-search labels (job, status, kind) onto Prometheus
//     labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead
//     of exposing an HTTP scrape endpoint, which fits a short-lived batch
//     tool better than a scrape target.
//
// The package intentionally contains all Prometheus-specific dependencies so
// that the rest of the project remains decoupled from Prometheus and can swap
// to alternative backends (e.g. Datadog, StatsD) without changes to the
// search pipeline.
package prompush

import (
	"fmt"

	"chemsearch/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	// Batch-level metrics
	batchCounter  *prometheus.CounterVec // "chemsearch_batches_total"
	batchDuration *prometheus.SummaryVec // "chemsearch_batch_duration_seconds"

	// Row-level metrics
	idCounter    prometheus.Counter     // "chemsearch_identifiers_total"
	parseCounter *prometheus.CounterVec // "chemsearch_parses_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (often same as the search job).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "chemsearch"
	}

	reg := prometheus.NewRegistry()

	// job is the Pushgateway grouping key; status and kind stay dynamic.
	batchCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chemsearch_batches_total",
			Help: "Total number of search batches, partitioned by status.",
		},
		[]string{"status"},
	)
	batchDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "chemsearch_batch_duration_seconds",
			Help:       "Duration of search batches in seconds, partitioned by status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"status"},
	)

	idCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chemsearch_identifiers_total",
			Help: "Total number of identifiers queried for this job.",
		},
	)

	// Parse outcomes: kind (parsed, warned, failed).
	parseCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chemsearch_parses_total",
			Help: "Structure-parse outcomes per kind (parsed, warned, failed).",
		},
		[]string{"kind"},
	)

	if err := reg.Register(batchCounter); err != nil {
		return nil, fmt.Errorf("prompush: register batch counter: %w", err)
	}
	if err := reg.Register(batchDuration); err != nil {
		return nil, fmt.Errorf("prompush: register batch summary: %w", err)
	}
	if err := reg.Register(idCounter); err != nil {
		return nil, fmt.Errorf("prompush: register identifier counter: %w", err)
	}
	if err := reg.Register(parseCounter); err != nil {
		return nil, fmt.Errorf("prompush: register parse counter: %w", err)
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		batchCounter:  batchCounter,
		batchDuration: batchDuration,
		idCounter:     idCounter,
		parseCounter:  parseCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "chemsearch_batches_total":
		if b.batchCounter == nil {
			return
		}
		b.batchCounter.WithLabelValues(labels["status"]).Add(delta)

	case "chemsearch_identifiers_total":
		if b.idCounter == nil {
			return
		}
		b.idCounter.Add(delta)

	case "chemsearch_parses_total":
		if b.parseCounter == nil {
			return
		}
		b.parseCounter.WithLabelValues(labels["kind"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "chemsearch_batch_duration_seconds" || b.batchDuration == nil {
		return
	}
	b.batchDuration.WithLabelValues(labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
