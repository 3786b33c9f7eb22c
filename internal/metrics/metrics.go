// Package metrics exposes Prometheus collectors for the API and the worker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Admission outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeDenied   = "denied"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Metrics owns a private registry. All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	admissions    *prometheus.CounterVec
	jobsFinished  *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	computeSpent  prometheus.Counter
	workerClaimed prometheus.Counter
}

// New registers every collector on a fresh registry.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		admissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_admissions_total",
			Help:      "Generation requests by type and admission outcome.",
		}, []string{"type", "outcome"}),
		jobsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_jobs_finished_total",
			Help:      "Generation jobs processed by the worker, by type and final status.",
		}, []string{"type", "status"}),
		jobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_job_duration_seconds",
			Help:      "Time spent by the worker on one job.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}, []string{"type"}),
		computeSpent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compute_budget_cents_total",
			Help:      "Compute budget consumed by processed jobs, in cents.",
		}),
		workerClaimed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_jobs_claimed_total",
			Help:      "Jobs claimed from the pending queue.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveRequest(method, route string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

func (m *Metrics) Admission(typ, outcome string) {
	if m == nil {
		return
	}
	m.admissions.WithLabelValues(typ, outcome).Inc()
}

func (m *Metrics) JobClaimed() {
	if m == nil {
		return
	}
	m.workerClaimed.Inc()
}

func (m *Metrics) JobFinished(typ, status string, took time.Duration, costCents int64) {
	if m == nil {
		return
	}
	m.jobsFinished.WithLabelValues(typ, status).Inc()
	m.jobDuration.WithLabelValues(typ).Observe(took.Seconds())
	if costCents > 0 {
		m.computeSpent.Add(float64(costCents))
	}
}
