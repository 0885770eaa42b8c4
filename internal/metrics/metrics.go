// Package metrics holds the dashboard's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the dashboard's collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "adpaws",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adpaws",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "adpaws",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		},
		[]string{"method", "path"},
	)

	graphqlRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adpaws",
			Subsystem: "graphql",
			Name:      "requests_total",
			Help:      "Total number of GraphQL operations sent to the backend.",
		},
		[]string{"operation", "outcome"},
	)

	graphqlDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "adpaws",
			Subsystem: "graphql",
			Name:      "request_duration_seconds",
			Help:      "Duration of GraphQL operations.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"operation"},
	)

	wizardsOpen = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "adpaws",
			Subsystem: "wizard",
			Name:      "open",
			Help:      "Wizard instances currently held for browser tabs.",
		},
		[]string{"form"},
	)

	wizardSubmits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adpaws",
			Subsystem: "wizard",
			Name:      "submits_total",
			Help:      "Wizard submissions by result.",
		},
		[]string{"form", "result"},
	)

	sessionAuthenticated = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "adpaws",
			Subsystem: "session",
			Name:      "authenticated",
			Help:      "1 while an operator is signed in.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		graphqlRequests,
		graphqlDuration,
		wizardsOpen,
		wizardSubmits,
		sessionAuthenticated,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps next with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordGraphQL records one backend operation. outcome is "ok", "remote_error"
// or "transport_error".
func RecordGraphQL(operation, outcome string, duration time.Duration) {
	if operation == "" {
		operation = "unknown"
	}
	graphqlRequests.WithLabelValues(operation, outcome).Inc()
	graphqlDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// WizardOpened and WizardClosed track hosted wizard instances.
func WizardOpened(form string) { wizardsOpen.WithLabelValues(form).Inc() }

func WizardClosed(form string) { wizardsOpen.WithLabelValues(form).Dec() }

// RecordSubmit counts a wizard submission.
func RecordSubmit(form string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	wizardSubmits.WithLabelValues(form, result).Inc()
}

// SetAuthenticated mirrors the session state.
func SetAuthenticated(ok bool) {
	if ok {
		sessionAuthenticated.Set(1)
		return
	}
	sessionAuthenticated.Set(0)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Flush lets streaming RPC responses through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// canonicalPath keeps label cardinality bounded: dog ids and RPC method
// names collapse into their prefix.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	switch {
	case strings.HasPrefix(parts[0], "adpaws.v1."):
		return "/" + parts[0]
	case parts[0] == "visitantes-perrunos" && len(parts) > 1:
		return "/visitantes-perrunos/:dogId"
	}
	return "/" + parts[0]
}
