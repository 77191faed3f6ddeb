// Package metrics exposes Prometheus collectors for the sum API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	sums            *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	gatherer        prometheus.Gatherer
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		sums: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calcapi_sums_total",
				Help: "Sums served, by source (cache or computed)",
			},
			[]string{"source"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calcapi_http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "calcapi_http_request_duration_seconds",
				Help:    "HTTP request duration by method and route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		gatherer: reg,
	}
	reg.MustRegister(m.sums, m.requests, m.requestDuration)
	return m
}

// ObserveSum counts one served sum.
func (m *Metrics) ObserveSum(source string) {
	if m == nil {
		return
	}
	m.sums.WithLabelValues(source).Inc()
}

// ObserveRequest records a finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(dur.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
