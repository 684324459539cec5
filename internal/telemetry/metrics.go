// Package telemetry exposes Prometheus metrics for the HTTP surface and
// the evaluation pipeline.
package telemetry

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	httpDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// Evaluations counts assignment decisions per experiment. The variant
	// label is the assigned variant name, or "none" for the unallocated
	// band and ineligible subjects.
	Evaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "experiment_evaluations_total",
			Help: "Experiment evaluation decisions by experiment and variant",
		},
		[]string{"experiment", "variant"},
	)

	// SnapshotExperiments tracks the number of experiments in the current
	// in-memory snapshot.
	SnapshotExperiments = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "snapshot_experiments",
		Help: "Number of experiments currently in the in-memory snapshot",
	})
)

func Init() {
	prometheus.MustRegister(httpReqs, httpDur, Evaluations, SnapshotExperiments)
}

// RecordEvaluation increments the evaluation counter for one decision.
func RecordEvaluation(experiment, variant string) {
	if variant == "" {
		variant = "none"
	}
	Evaluations.WithLabelValues(experiment, variant).Inc()
}

// Middleware records request counts and latencies per chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, r)

		httpReqs.WithLabelValues(route, r.Method, http.StatusText(ww.status)).Inc()
		httpDur.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
