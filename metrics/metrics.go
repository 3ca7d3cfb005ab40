package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thechosenone98/MP3Journaling/logger"
)

// Metrics contains the Prometheus metrics the pipeline reports. All Record
// methods are safe on a nil receiver, which is how metrics are disabled.
type Metrics struct {
	GroupsProcessed prometheus.Counter
	GroupsFailed    prometheus.Counter
	SegmentsMerged  prometheus.Counter
	MergeDuration   prometheus.Histogram

	IntervalsResolved *prometheus.CounterVec
	ClipsExported     *prometheus.CounterVec
}

// NewMetrics creates and registers all pipeline metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		GroupsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mp3journal_groups_processed_total",
			Help: "Total number of recording groups fully processed",
		}),
		GroupsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mp3journal_groups_failed_total",
			Help: "Total number of recording groups that failed processing",
		}),
		SegmentsMerged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mp3journal_segments_merged_total",
			Help: "Total number of audio segments merged into sessions",
		}),
		MergeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mp3journal_merge_duration_seconds",
			Help:    "Time spent aligning and merging one recording group",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		}),
		IntervalsResolved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mp3journal_intervals_resolved_total",
			Help: "Total number of annotation intervals resolved",
		}, []string{"pattern"}),
		ClipsExported: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mp3journal_clips_exported_total",
			Help: "Total number of annotation clips exported",
		}, []string{"pattern"}),
	}
}

// RecordGroupProcessed increments the processed groups counter.
func (m *Metrics) RecordGroupProcessed() {
	if m == nil {
		return
	}
	m.GroupsProcessed.Inc()
}

// RecordGroupFailed increments the failed groups counter.
func (m *Metrics) RecordGroupFailed() {
	if m == nil {
		return
	}
	m.GroupsFailed.Inc()
}

// RecordSegmentsMerged adds count merged segments.
func (m *Metrics) RecordSegmentsMerged(count int) {
	if m == nil {
		return
	}
	m.SegmentsMerged.Add(float64(count))
}

// ObserveMergeDuration records how long one group took to align and merge.
func (m *Metrics) ObserveMergeDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.MergeDuration.Observe(d.Seconds())
}

// RecordIntervalResolved increments the resolved intervals counter for a
// pattern.
func (m *Metrics) RecordIntervalResolved(pattern string) {
	if m == nil {
		return
	}
	m.IntervalsResolved.WithLabelValues(pattern).Inc()
}

// RecordClipExported increments the exported clips counter for a pattern.
func (m *Metrics) RecordClipExported(pattern string) {
	if m == nil {
		return
	}
	m.ClipsExported.WithLabelValues(pattern).Inc()
}

// Serve exposes the /metrics endpoint on addr. It blocks, so callers run
// it on its own goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info("Metrics endpoint listening", logger.String("addr", addr))
	return http.ListenAndServe(addr, mux)
}
