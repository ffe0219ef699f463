// Package metrics expone collectors de Prometheus para HTTP y para el flujo de adopción.
// Se usa un registry propio (no el global) para que router y tests puedan crear varios.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	Adoption *AdoptionMetrics
}

func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Registry{
		reg: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Adoption: newAdoptionMetrics(f),
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Middleware instrumenta requests usando el route pattern de chi (cardinalidad acotada).
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, req.ProtoMajor)

		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		r.httpRequests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
		r.httpLatency.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	})
}

type AdoptionMetrics struct {
	created     prometheus.Counter
	transitions *prometheus.CounterVec
	sideEffects *prometheus.CounterVec
	reconciled  *prometheus.CounterVec
}

func newAdoptionMetrics(f promauto.Factory) *AdoptionMetrics {
	return &AdoptionMetrics{
		created: f.NewCounter(prometheus.CounterOpts{
			Name: "adoption_requests_created_total",
			Help: "Adoption requests persisted in the ledger.",
		}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "adoption_transitions_total",
			Help: "Ledger status transitions by target status.",
		}, []string{"status"}),
		sideEffects: f.NewCounterVec(prometheus.CounterOpts{
			Name: "adoption_side_effects_total",
			Help: "Best-effort side effects by step and outcome (ok|failed|skipped).",
		}, []string{"step", "outcome"}),
		reconciled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "adoption_reconcile_pets_total",
			Help: "Pets visited by the reconciliation pass by result (fixed|orphan).",
		}, []string{"result"}),
	}
}

func (m *AdoptionMetrics) RequestCreated() {
	m.created.Inc()
}

func (m *AdoptionMetrics) Transition(status string) {
	m.transitions.WithLabelValues(status).Inc()
}

func (m *AdoptionMetrics) SideEffect(step, outcome string) {
	m.sideEffects.WithLabelValues(step, outcome).Inc()
}

func (m *AdoptionMetrics) Reconciled(fixed, orphans int) {
	m.reconciled.WithLabelValues("fixed").Add(float64(fixed))
	m.reconciled.WithLabelValues("orphan").Add(float64(orphans))
}
