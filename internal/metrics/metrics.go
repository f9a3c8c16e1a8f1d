// Package metrics exposes Prometheus collectors for HTTP traffic, rate limiting,
// external provider calls and identity events.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build independent instances.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
	RateLimitRejections *prometheus.CounterVec
	ProviderCalls       *prometheus.CounterVec
	ProviderDuration    *prometheus.HistogramVec
	IdentityEvents      *prometheus.CounterVec
}

// New builds and registers every collector, including the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "learnhub",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests received",
			},
			[]string{"route", "method", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "learnhub",
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		HTTPErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "learnhub",
				Name:      "http_errors_total",
				Help:      "Total number of failed HTTP requests (4xx/5xx)",
			},
			[]string{"route", "method", "status"},
		),
		RateLimitRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "learnhub",
				Name:      "http_rate_limit_rejections_total",
				Help:      "Total number of HTTP requests rejected due to rate limiting",
			},
			[]string{"route"},
		),
		ProviderCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "learnhub",
				Name:      "provider_calls_total",
				Help:      "Calls to storage, payment and email providers by outcome",
			},
			[]string{"provider", "operation", "outcome"},
		),
		ProviderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "learnhub",
				Name:      "provider_call_duration_seconds",
				Help:      "Time spent waiting on external providers",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"provider", "operation"},
		),
		IdentityEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "learnhub",
				Name:      "identity_events_total",
				Help:      "Sign-ups, sign-ins, refreshes and sign-outs",
			},
			[]string{"kind"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.HTTPErrors,
		m.RateLimitRejections,
		m.ProviderCalls,
		m.ProviderDuration,
		m.IdentityEvents,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveProvider records one provider call that started at start.
func (m *Metrics) ObserveProvider(provider, operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.ProviderCalls.WithLabelValues(provider, operation, outcome).Inc()
	m.ProviderDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
}
