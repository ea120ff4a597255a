// Package metrics exposes Prometheus instruments for the knowledge store.
//
// Instruments are registered on a private registry owned by Metrics so
// several stores (and tests) can coexist in one process. A nil *Metrics is
// valid and records nothing.
package metrics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

const namespace = "lorekeep"

// Metrics holds the store's counters and histograms.
type Metrics struct {
	registry *prometheus.Registry

	ingestedDocs     prometheus.Counter
	ingestedChunks   prometheus.Counter
	ingestDuration   prometheus.Histogram
	tombstones       *prometheus.CounterVec
	forgetNotFound   prometheus.Counter
	searches         *prometheus.CounterVec
	searchDuration   *prometheus.HistogramVec
	searchHits       *prometheus.HistogramVec
	integrityFailed  prometheus.Counter
	semanticFallback prometheus.Counter
	indexErrors      *prometheus.CounterVec
}

// New creates a Metrics with its own registry. Go runtime collectors are
// registered alongside the store instruments.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ingestedDocs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_documents_total",
			Help:      "Documents ingested.",
		}),
		ingestedChunks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_chunks_total",
			Help:      "Chunks written during ingest.",
		}),
		ingestDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Time to ingest one document.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		tombstones: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tombstones_total",
			Help:      "Tombstones written, by target kind.",
		}, []string{"kind"}),
		forgetNotFound: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forget_not_found_total",
			Help:      "Forget requests for unknown or already deleted ids.",
		}),
		searches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Searches run, by mode.",
		}, []string{"mode"}),
		searchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search latency, by mode.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
		}, []string{"mode"}),
		searchHits: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_hits",
			Help:      "Results returned per search, by mode.",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		}, []string{"mode"}),
		integrityFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integrity_failures_total",
			Help:      "Objects that failed integrity verification.",
		}),
		semanticFallback: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "semantic_fallback_total",
			Help:      "Hybrid searches that used the lexical index instead of the semantic index.",
		}),
		indexErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "secondary_index_errors_total",
			Help:      "Best-effort secondary index failures, by index.",
		}, []string{"index"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveIngest records one ingested document.
func (m *Metrics) ObserveIngest(chunks int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ingestedDocs.Inc()
	m.ingestedChunks.Add(float64(chunks))
	m.ingestDuration.Observe(elapsed.Seconds())
}

// AddTombstones records tombstones written for kind.
func (m *Metrics) AddTombstones(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.tombstones.WithLabelValues(kind).Add(float64(n))
}

// IncForgetNotFound records a forget request that matched nothing.
func (m *Metrics) IncForgetNotFound() {
	if m == nil {
		return
	}
	m.forgetNotFound.Inc()
}

// ObserveSearch records one search.
func (m *Metrics) ObserveSearch(mode string, hits int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(mode).Inc()
	m.searchDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	m.searchHits.WithLabelValues(mode).Observe(float64(hits))
}

// AddIntegrityFailures records objects that failed verification.
func (m *Metrics) AddIntegrityFailures(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.integrityFailed.Add(float64(n))
}

// IncSemanticFallback records a hybrid search served by the lexical index.
func (m *Metrics) IncSemanticFallback() {
	if m == nil {
		return
	}
	m.semanticFallback.Inc()
}

// IncIndexError records a best-effort secondary index failure.
func (m *Metrics) IncIndexError(index string) {
	if m == nil {
		return
	}
	m.indexErrors.WithLabelValues(index).Inc()
}

// WriteText writes every store metric in the Prometheus text format.
// Go runtime metrics are included only when withRuntime is set.
func (m *Metrics) WriteText(w io.Writer, withRuntime bool) error {
	if m == nil {
		return nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if !withRuntime && !isStoreMetric(mf.GetName()) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func isStoreMetric(name string) bool {
	return strings.HasPrefix(name, namespace+"_")
}
