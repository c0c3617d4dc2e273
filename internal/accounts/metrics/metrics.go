// Package metrics holds the Prometheus collectors for the accounts service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDropped = "dropped"
)

// Metrics contains the service's collectors. A nil *Metrics is valid and
// records nothing, which keeps tests free of registry plumbing.
type Metrics struct {
	Registry *prometheus.Registry

	AuthOperations *prometheus.CounterVec
	CodesIssued    prometheus.Counter
	MailDeliveries *prometheus.CounterVec
	MailDuration   prometheus.Histogram
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them, along with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		AuthOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accounts_auth_operations_total",
				Help: "Total number of auth operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		CodesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accounts_verification_codes_issued_total",
			Help: "Total number of verification codes issued",
		}),
		MailDeliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accounts_mail_deliveries_total",
				Help: "Total number of mail delivery attempts by outcome",
			},
			[]string{"outcome"},
		),
		MailDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "accounts_mail_delivery_seconds",
			Help:    "Mail delivery duration in seconds, retries included",
			Buckets: prometheus.DefBuckets,
		}),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accounts_http_requests_total",
				Help: "Total number of HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "accounts_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.AuthOperations,
		m.CodesIssued,
		m.MailDeliveries,
		m.MailDuration,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// RecordAuth counts one auth operation. err == nil is a success.
func (m *Metrics) RecordAuth(operation string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.AuthOperations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) RecordCodeIssued() {
	if m == nil {
		return
	}
	m.CodesIssued.Inc()
}

func (m *Metrics) RecordMailDelivery(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.MailDeliveries.WithLabelValues(outcome).Inc()
	m.MailDuration.Observe(took.Seconds())
}

// Middleware records request counts and latency. route should be the
// registered pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) Middleware(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
			m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
