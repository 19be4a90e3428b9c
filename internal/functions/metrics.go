// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package functions

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's collectors on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	payments *prometheus.CounterVec
	notify   *prometheus.CounterVec
	limited  *prometheus.CounterVec
}

// NewMetrics registers the collectors. Each call gets its own registry so
// tests can build servers side by side.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arenatv",
			Subsystem: "functions",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "arenatv",
			Subsystem: "functions",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		payments: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arenatv",
			Name:      "payments_total",
			Help:      "Payment attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		notify: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arenatv",
			Name:      "notification_runs_total",
			Help:      "Notification generation runs by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		limited: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arenatv",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"bucket"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Middleware records count and latency per matched route pattern, which keeps
// label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) payment(method, outcome string) {
	m.payments.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) notificationRun(trigger string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.notify.WithLabelValues(trigger, outcome).Inc()
}
