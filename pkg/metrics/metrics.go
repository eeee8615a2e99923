package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/menta2k/photo-coach/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all scoring pipeline metrics
type Metrics struct {
	// Frame counters
	FramesScored    atomic.Uint64
	NoSubjectFrames atomic.Uint64

	// Error counters
	LocatorErrors atomic.Uint64
	LogErrors     atomic.Uint64

	// Last observed scores
	lastFinal atomic.Uint64 // hundredths

	finalScores  prometheus.Histogram
	scoreLatency prometheus.Histogram

	registry *prometheus.Registry
}

// New creates a new Metrics instance with Prometheus collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		finalScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "photocoach_final_score",
			Help:    "Distribution of final photo scores",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		scoreLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "photocoach_score_duration_seconds",
			Help:    "Time spent locating and scoring one frame",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
	}

	m.registerPrometheusMetrics()

	return m
}

// registerPrometheusMetrics registers all metrics with Prometheus
func (m *Metrics) registerPrometheusMetrics() {
	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "photocoach_frames_scored_total",
			Help: "Total frames scored",
		},
		func() float64 { return float64(m.FramesScored.Load()) },
	))

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "photocoach_no_subject_frames_total",
			Help: "Total frames scored without a detected subject",
		},
		func() float64 { return float64(m.NoSubjectFrames.Load()) },
	))

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "photocoach_locator_errors_total",
			Help: "Total object locator failures",
		},
		func() float64 { return float64(m.LocatorErrors.Load()) },
	))

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "photocoach_log_errors_total",
			Help: "Total score log write failures",
		},
		func() float64 { return float64(m.LogErrors.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "photocoach_last_final_score",
			Help: "Final score of the most recently scored frame",
		},
		func() float64 { return float64(m.lastFinal.Load()) / 100 },
	))

	m.registry.MustRegister(m.finalScores, m.scoreLatency)
}

// ObserveReport records one scored frame
func (m *Metrics) ObserveReport(r types.ScoreReport, subject bool, took time.Duration) {
	m.FramesScored.Add(1)
	if !subject {
		m.NoSubjectFrames.Add(1)
	}
	m.lastFinal.Store(uint64(r.FinalScore*100 + 0.5))
	m.finalScores.Observe(r.FinalScore)
	m.scoreLatency.Observe(took.Seconds())
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
