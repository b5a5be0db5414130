// Package metrics exports client-side metrics in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter records backend calls, envelope outcomes, cache behaviour and
// conversation activity. A nil *Exporter is valid and records nothing, so
// components can take one unconditionally.
type Exporter struct {
	registry *prometheus.Registry

	// Transport metrics
	requestLatency *prometheus.HistogramVec
	requests       *prometheus.CounterVec

	// Envelope outcomes per client operation
	outcomes *prometheus.CounterVec

	// Cache metrics
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// Conversation metrics
	turns      *prometheus.CounterVec
	generating prometheus.Gauge
}

// Config configures the exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns the default configuration. Generation calls are slow,
// so the buckets reach two minutes.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}
}

// NewExporter creates an exporter and registers its collectors.
func NewExporter(cfg Config) *Exporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{registry: registry}

	e.requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "crea",
			Subsystem: "client",
			Name:      "request_latency_seconds",
			Help:      "Backend request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"endpoint"},
	)

	e.requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crea",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Backend requests by endpoint and HTTP status (0 when no response)",
		},
		[]string{"endpoint", "status"},
	)

	e.outcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crea",
			Subsystem: "client",
			Name:      "outcomes_total",
			Help:      "Envelope outcomes by operation, status and error code",
		},
		[]string{"operation", "status", "code"},
	)

	e.cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crea",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	e.cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crea",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	e.turns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crea",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Conversation turns appended by role",
		},
		[]string{"role"},
	)

	e.generating = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "crea",
			Subsystem: "conversation",
			Name:      "generating",
			Help:      "Number of generate or regenerate calls in flight",
		},
	)

	registry.MustRegister(
		e.requestLatency,
		e.requests,
		e.outcomes,
		e.cacheHits,
		e.cacheMisses,
		e.turns,
		e.generating,
	)

	return e
}

// RecordRequest records one backend round trip.
func (e *Exporter) RecordRequest(endpoint string, status int, latency time.Duration) {
	if e == nil {
		return
	}
	e.requests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	e.requestLatency.WithLabelValues(endpoint).Observe(latency.Seconds())
}

// RecordOutcome records the envelope a client operation produced.
func (e *Exporter) RecordOutcome(operation, status, code string) {
	if e == nil {
		return
	}
	e.outcomes.WithLabelValues(operation, status, code).Inc()
}

func (e *Exporter) RecordCacheHit(cacheType string) {
	if e == nil {
		return
	}
	e.cacheHits.WithLabelValues(cacheType).Inc()
}

func (e *Exporter) RecordCacheMiss(cacheType string) {
	if e == nil {
		return
	}
	e.cacheMisses.WithLabelValues(cacheType).Inc()
}

func (e *Exporter) RecordTurn(role string) {
	if e == nil {
		return
	}
	e.turns.WithLabelValues(role).Inc()
}

// GenerationStarted and GenerationFinished bracket a backend generation call.
func (e *Exporter) GenerationStarted() {
	if e == nil {
		return
	}
	e.generating.Inc()
}

func (e *Exporter) GenerationFinished() {
	if e == nil {
		return
	}
	e.generating.Dec()
}

// Handler returns the HTTP handler for the metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	if e == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Registry returns the Prometheus registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}
