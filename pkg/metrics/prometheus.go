// Package metrics provides Prometheus metrics for a tops run.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage names used for the stage duration histogram.
const (
	StageLoad   = "load"
	StageMatch  = "match"
	StageDedupe = "dedupe"
	StageRank   = "rank"
	StageReport = "report"
)

// Manager manages all Prometheus metrics for a run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	ppBuckets        []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer
	gatherer         prometheus.Gatherer

	// Source databases
	sourceRecords *prometheus.GaugeVec

	// Matching
	scoresProcessed   prometheus.Counter
	scoresMatched     prometheus.Counter
	scoresSkipped     *prometheus.CounterVec
	outliersRejected  prometheus.Counter
	evaluationLatency prometheus.Histogram
	performance       prometheus.Histogram

	// Deduplication
	duplicatesCollapsed prometheus.Counter
	uniqueEntries       prometheus.Gauge

	// Ranking
	weightedTotal  prometheus.Gauge
	bonusTotal     prometheus.Gauge
	fullComboCount prometheus.Gauge

	stageDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Default returns the process-wide manager backed by the custom registry.
func Default() *Manager {
	return globalManager
}

// GetRegistry returns the custom registry behind Default.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tops",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		ppBuckets:        prometheus.LinearBuckets(0, 100, 20),
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
		gatherer:         prometheus.DefaultGatherer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of metric definitions
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.sourceRecords = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "source_records",
		Help:        "Number of top-level records decoded from each source database",
		ConstLabels: labels,
	}, []string{"source"})

	m.scoresProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "scores_processed_total",
		Help:        "Total number of score records visited by the matcher",
		ConstLabels: labels,
	})

	m.scoresMatched = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "scores_matched_total",
		Help:        "Total number of score records that produced a scored entry",
		ConstLabels: labels,
	})

	m.scoresSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "scores_skipped_total",
		Help:        "Total number of score records skipped, by reason",
		ConstLabels: labels,
	}, []string{"reason"})

	m.outliersRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "outliers_rejected_total",
		Help:        "Total number of entries dropped by the performance ceiling",
		ConstLabels: labels,
	})

	m.evaluationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "evaluation_latency_milliseconds",
		Help:        "Histogram of performance evaluation latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.performance = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "performance_points",
		Help:        "Distribution of accepted performance values",
		Buckets:     m.ppBuckets,
		ConstLabels: labels,
	})

	m.duplicatesCollapsed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "duplicates_collapsed_total",
		Help:        "Total number of scored entries folded into a better entry on the same beatmap",
		ConstLabels: labels,
	})

	m.uniqueEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "unique_entries",
		Help:        "Number of entries left after deduplication",
		ConstLabels: labels,
	})

	m.weightedTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "weighted_total",
		Help:        "Weighted performance total of the last run",
		ConstLabels: labels,
	})

	m.bonusTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "bonus_total",
		Help:        "Bonus performance total of the last run",
		ConstLabels: labels,
	})

	m.fullComboCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "full_combo_count",
		Help:        "Number of full combos on 9 star beatmaps",
		ConstLabels: labels,
	})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_duration_milliseconds",
		Help:        "Duration of each pipeline stage in milliseconds",
		Buckets:     prometheus.ExponentialBuckets(1, 4, 10),
		ConstLabels: labels,
	}, []string{"stage"})
}

// SetSourceRecords records how many records a source database decoded to.
func (m *Manager) SetSourceRecords(source string, count int) {
	if m.enabled {
		m.sourceRecords.WithLabelValues(source).Set(float64(count))
	}
}

// RecordScoreProcessed counts one visited score record.
func (m *Manager) RecordScoreProcessed() {
	if m.enabled {
		m.scoresProcessed.Inc()
	}
}

// RecordScoreMatched counts one accepted entry and observes its value.
func (m *Manager) RecordScoreMatched(pp float64) {
	if m.enabled {
		m.scoresMatched.Inc()
		m.performance.Observe(pp)
	}
}

// RecordScoreSkipped counts one skipped record under reason.
func (m *Manager) RecordScoreSkipped(reason string) {
	if m.enabled {
		m.scoresSkipped.WithLabelValues(reason).Inc()
	}
}

// RecordOutlier counts one entry dropped by the performance ceiling.
func (m *Manager) RecordOutlier() {
	if m.enabled {
		m.outliersRejected.Inc()
	}
}

// RecordEvaluationLatency observes one evaluator call.
func (m *Manager) RecordEvaluationLatency(d time.Duration) {
	if m.enabled {
		m.evaluationLatency.Observe(milliseconds(d))
	}
}

// RecordDuplicatesCollapsed adds n collapsed duplicates.
func (m *Manager) RecordDuplicatesCollapsed(n int) {
	if m.enabled && n > 0 {
		m.duplicatesCollapsed.Add(float64(n))
	}
}

// UpdateUniqueEntries sets the post-dedupe entry count.
func (m *Manager) UpdateUniqueEntries(n int) {
	if m.enabled {
		m.uniqueEntries.Set(float64(n))
	}
}

// UpdateTotals stores the final report figures.
func (m *Manager) UpdateTotals(weighted, bonus float64, fullCombos int) {
	if m.enabled {
		m.weightedTotal.Set(weighted)
		m.bonusTotal.Set(bonus)
		m.fullComboCount.Set(float64(fullCombos))
	}
}

// RecordStageDuration observes how long a pipeline stage took.
func (m *Manager) RecordStageDuration(stage string, d time.Duration) {
	if m.enabled {
		m.stageDuration.WithLabelValues(stage).Observe(milliseconds(d))
	}
}

// Summary gathers counters and gauges into a flat map keyed by metric name,
// with label values appended as `name{label="value"}`. Histograms report
// their sample count.
func (m *Manager) Summary() (map[string]float64, error) {
	families, err := m.gatherer.Gather()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrObserveFailed, err)
	}

	out := make(map[string]float64)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			key := mf.GetName()
			var pairs []string
			for _, lp := range metric.GetLabel() {
				if _, constant := m.customLabels[lp.GetName()]; constant {
					continue
				}
				pairs = append(pairs, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			if len(pairs) > 0 {
				sort.Strings(pairs)
				key += "{" + strings.Join(pairs, ",") + "}"
			}

			switch {
			case metric.GetCounter() != nil:
				out[key] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				out[key] = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				out[key+"_count"] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return out, nil
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
