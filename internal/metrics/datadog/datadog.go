// Package datadog implements a DogStatsD backend for the metrics package.
//
// This package adapts the generic metrics.Backend interface to Datadog by:
//
//   - Mapping the compound-search metric names onto Datadog's dotted naming
//     convention ("chemsearch_batches_total" → "batches", etc.), with the
//     namespace prefix supplied by the client configuration.
//   - Mapping the compound-search labels (status, kind) onto Datadog tags;
//     the job name travels in the client's global tags rather than per call.
//   - Forwarding observations to a local or remote Datadog agent over the
//     DogStatsD protocol.
//
// The package intentionally contains all Datadog-specific dependencies so
// that the rest of the project remains decoupled from Datadog and can swap
// to alternative backends (e.g. Prometheus) without changes to the search
// pipeline.
package datadog

import (
	"fmt"

	"chemsearch/internal/metrics"

	"github.com/DataDog/datadog-go/v5/statsd"
)

// Datadog-side metric names. The configured Namespace (e.g. "chemsearch.")
// is prepended by the client.
const (
	batchesMetric       = "batches"
	batchDurationMetric = "batch.duration_seconds"
	identifiersMetric   = "identifiers"
	parsesMetric        = "parses"
)

// Config holds Datadog backend configuration.
type Config struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125" or "unix:///path/to/socket".
	Addr string

	// Namespace is an optional prefix added to all metric names, e.g. "chemsearch.".
	Namespace string

	// GlobalTags are tags applied to all metrics emitted by this backend,
	// e.g. []string{"env:prod","service:comas-lookup"}.
	GlobalTags []string
}

// client is the slice of the statsd API the backend uses. Tests substitute a
// recorder.
type client interface {
	Count(name string, value int64, tags []string, rate float64) error
	Histogram(name string, value float64, tags []string, rate float64) error
	Close() error
}

// Backend is a Datadog implementation of metrics.Backend.
//
// It routes the search pipeline's metric names onto DogStatsD counters and
// histograms. The same Backend instance is intended to be installed as the
// global metrics backend via metrics.SetBackend.
type Backend struct {
	client client
}

// NewBackend constructs a Datadog metrics backend from the given configuration.
//
// The Addr field is required; when empty, NewBackend returns an error.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: Addr is required")
	}

	var opts []statsd.Option
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}

	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client: %w", err)
	}

	return &Backend{client: c}, nil
}

// IncCounter implements metrics.Backend.IncCounter using DogStatsD Count
// metrics. Counter deltas from the pipeline are whole numbers; fractional
// deltas are truncated by the int64 conversion.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	switch name {
	case "chemsearch_batches_total":
		b.client.Count(batchesMetric, int64(delta), statusTags(labels), 1)

	case "chemsearch_identifiers_total":
		b.client.Count(identifiersMetric, int64(delta), nil, 1)

	case "chemsearch_parses_total":
		b.client.Count(parsesMetric, int64(delta), kindTags(labels), 1)

	default:
		// unknown metric name: ignore
	}
}

// ObserveHistogram implements metrics.Backend.ObserveHistogram using a
// DogStatsD Histogram metric for the batch-duration timing.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil || name != "chemsearch_batch_duration_seconds" {
		return
	}
	b.client.Histogram(batchDurationMetric, value, statusTags(labels), 1)
}

// Flush implements metrics.Backend.Flush.
//
// For the Datadog statsd client, Close() is the closest equivalent and is
// typically used at process shutdown to flush any buffered data.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

// statusTags renders the batch status label as a Datadog tag.
func statusTags(lbls metrics.Labels) []string {
	if s := lbls["status"]; s != "" {
		return []string{"status:" + s}
	}
	return nil
}

// kindTags renders the parse-outcome kind label as a Datadog tag.
func kindTags(lbls metrics.Labels) []string {
	if k := lbls["kind"]; k != "" {
		return []string{"kind:" + k}
	}
	return nil
}
