package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchesTotal *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	blockHeight  prometheus.Gauge
	mergedPoints *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainpulse_fetches_total",
				Help: "Total number of upstream fetches",
			},
			[]string{"source", "series"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		blockHeight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "chainpulse_block_height",
				Help: "Last observed network block height",
			},
		),
		mergedPoints: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chainpulse_merged_points",
				Help: "Canonical history length after the last merge",
			},
			[]string{"series"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chainpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordFetch records one upstream fetch for a series.
func (r *Recorder) RecordFetch(source, series string) {
	r.fetchesTotal.WithLabelValues(source, series).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordBlockHeight records the last observed block height.
func (r *Recorder) RecordBlockHeight(height int64) {
	r.blockHeight.Set(float64(height))
}

// RecordMerged records the canonical history length after a merge.
func (r *Recorder) RecordMerged(series string, points int) {
	r.mergedPoints.WithLabelValues(series).Set(float64(points))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
