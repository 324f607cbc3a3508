package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/domain"
)

const namespace = "emotion_api"

// Collector holds the service metrics on its own registry
type Collector struct {
	registry *prometheus.Registry

	analyses         *prometheus.CounterVec
	classifierFaults *prometheus.CounterVec
	dominant         *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	classifierUp     prometheus.Gauge
}

// Option configures a Collector
type Option func(*prometheus.Registry)

// WithRuntimeCollectors adds the Go runtime and process collectors
func WithRuntimeCollectors() Option {
	return func(reg *prometheus.Registry) {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// NewCollector creates a collector registered on a fresh registry
func NewCollector(opts ...Option) *Collector {
	reg := prometheus.NewRegistry()
	for _, opt := range opts {
		opt(reg)
	}

	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		analyses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Total number of successful analyses by result source",
			},
			[]string{"source", "fallback"},
		),
		classifierFaults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "classifier_faults_total",
				Help:      "Total number of classifier faults replaced by synthetic results",
			},
			[]string{"classifier"},
		),
		dominant: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dominant_emotion_total",
				Help:      "Total number of results by dominant emotion",
			},
			[]string{"emotion"},
		),
		analysisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_duration_seconds",
				Help:      "Time spent classifying one image",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"source"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		classifierUp: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "classifier_available",
				Help:      "1 when a real classifier answered the startup probe",
			},
		),
	}
}

// ObserveAnalysis records one successful analysis
func (c *Collector) ObserveAnalysis(source string, fallback bool, dominant domain.Emotion, elapsed time.Duration) {
	c.analyses.WithLabelValues(source, strconv.FormatBool(fallback)).Inc()
	c.dominant.WithLabelValues(string(dominant)).Inc()
	c.analysisDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// IncClassifierFault counts a fault of the named classifier
func (c *Collector) IncClassifierFault(classifier string) {
	c.classifierFaults.WithLabelValues(classifier).Inc()
}

// ObserveRequest records one HTTP request
func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// SetClassifierAvailable publishes the startup availability flag
func (c *Collector) SetClassifierAvailable(available bool) {
	if available {
		c.classifierUp.Set(1)
		return
	}
	c.classifierUp.Set(0)
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
