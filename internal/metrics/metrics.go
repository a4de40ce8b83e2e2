package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded for generations and illustrations.
const (
	OutcomeSuccess   = "success"
	OutcomeFailed    = "failed"
	OutcomeEmpty     = "empty"
	OutcomeAbandoned = "abandoned"
)

// Recorder receives orchestration measurements.
type Recorder interface {
	GenerationFinished(outcome string, d time.Duration)
	IllustrationFinished(outcome string, d time.Duration)
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) GenerationFinished(string, time.Duration)   {}
func (Nop) IllustrationFinished(string, time.Duration) {}

// Prometheus implements Recorder on a private registry and also
// measures HTTP traffic for the web surface.
type Prometheus struct {
	registry *prometheus.Registry

	generations      *prometheus.CounterVec
	generationTime   *prometheus.HistogramVec
	illustrations    *prometheus.CounterVec
	illustrationTime prometheus.Histogram
	requests         *prometheus.CounterVec
	requestTime      *prometheus.HistogramVec
}

// NewPrometheus creates and registers all collectors.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lembar_generations_total",
				Help: "Assessment generations by outcome",
			},
			[]string{"outcome"},
		),
		generationTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lembar_generation_duration_seconds",
				Help:    "Time from submission to a complete or failed assessment",
				Buckets: []float64{5, 10, 20, 30, 60, 120, 300, 600},
			},
			[]string{"outcome"},
		),
		illustrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lembar_illustrations_total",
				Help: "Illustration requests by outcome",
			},
			[]string{"outcome"},
		),
		illustrationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lembar_illustration_duration_seconds",
			Help:    "Duration of a single illustration request",
			Buckets: []float64{1, 2, 5, 10, 20, 40},
		}),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
	}

	p.registry.MustRegister(
		p.generations, p.generationTime,
		p.illustrations, p.illustrationTime,
		p.requests, p.requestTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prometheus) GenerationFinished(outcome string, d time.Duration) {
	p.generations.WithLabelValues(outcome).Inc()
	p.generationTime.WithLabelValues(outcome).Observe(d.Seconds())
}

func (p *Prometheus) IllustrationFinished(outcome string, d time.Duration) {
	p.illustrations.WithLabelValues(outcome).Inc()
	p.illustrationTime.Observe(d.Seconds())
}

// ObserveHTTP records one served request.
func (p *Prometheus) ObserveHTTP(method, route string, status int, d time.Duration) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.requestTime.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}
