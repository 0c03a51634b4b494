// Package telemetry instruments the promotion engine: Prometheus collectors,
// HTTP middleware, and bounded in-process rolling statistics.
//
// All collectors live in a custom [prometheus.Registry] (not the global
// default) so that only engine metrics appear on the /metrics endpoint.
package telemetry

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vihabhat/Promotion-rule-engine/internal/engine"
	"github.com/vihabhat/Promotion-rule-engine/internal/store"
)

// Evaluation outcome label values.
const (
	outcomeMatch   = "match"
	outcomeNoMatch = "no_match"
	outcomeInvalid = "invalid_input"
)

// Metrics holds all Prometheus collectors used by the engine, plus the
// rolling statistics behind /v1/metrics/summary.
type Metrics struct {
	Registry *prometheus.Registry
	Rolling  *RollingStats

	EvaluationsTotal    *prometheus.CounterVec
	EvaluationDuration  prometheus.Histogram
	RuleHitsTotal       *prometheus.CounterVec
	PromotionsGranted   *prometheus.CounterVec
	RulesLoaded         prometheus.Gauge
	SnapshotVersion     prometheus.Gauge
	LoadErrorsTotal     *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all engine metrics in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		Rolling:  NewRollingStats(time.Now),

		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promo_evaluations_total",
			Help: "Total number of player evaluations by outcome.",
		}, []string{"outcome"}),

		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "promo_evaluation_duration_seconds",
			Help: "Evaluation latency in seconds.",
			// Finer than DefBuckets below 10ms for in-memory evaluations.
			Buckets: []float64{.00025, .0005, .001, .0025, .005, .01, .05, .1, .25, .5, 1},
		}),

		RuleHitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promo_rule_hits_total",
			Help: "Total number of times each rule matched.",
		}, []string{"rule_id"}),

		PromotionsGranted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promo_promotions_granted_total",
			Help: "Total number of promotions granted by type.",
		}, []string{"type"}),

		RulesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "promo_rules_loaded",
			Help: "Number of rules in the serving snapshot.",
		}),

		SnapshotVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "promo_snapshot_version",
			Help: "Version counter of the serving snapshot.",
		}),

		LoadErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promo_rule_load_errors_total",
			Help: "Total number of rule load failures by kind.",
		}, []string{"kind"}),

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"route", "method", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	reg.MustRegister(
		m.EvaluationsTotal,
		m.EvaluationDuration,
		m.RuleHitsTotal,
		m.PromotionsGranted,
		m.RulesLoaded,
		m.SnapshotVersion,
		m.LoadErrorsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}

// Handler returns an http.Handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveEvaluation records one evaluation in the collectors and the rolling
// stats. It is the single choke point for evaluation accounting.
func (m *Metrics) ObserveEvaluation(p engine.Player, res engine.Result, d time.Duration, err error) {
	switch {
	case err != nil:
		m.EvaluationsTotal.WithLabelValues(outcomeInvalid).Inc()
	case res.Matched():
		m.EvaluationsTotal.WithLabelValues(outcomeMatch).Inc()
	default:
		m.EvaluationsTotal.WithLabelValues(outcomeNoMatch).Inc()
	}
	m.EvaluationDuration.Observe(d.Seconds())
	for _, id := range res.MatchedRules {
		m.RuleHitsTotal.WithLabelValues(id).Inc()
	}
	for _, promo := range res.Promotions {
		m.PromotionsGranted.WithLabelValues(promo.Type).Inc()
	}
	m.Rolling.Record(p, res, d, err)
}

// ObserveLoad records a successful rule load: snapshot gauges plus one
// validation error per dropped rule.
func (m *Metrics) ObserveLoad(count int, version uint64, dropped []error) {
	m.RulesLoaded.Set(float64(count))
	m.SnapshotVersion.Set(float64(version))
	for range dropped {
		m.LoadErrorsTotal.WithLabelValues("validation").Inc()
	}
}

// ObserveLoadError records a failed load by kind.
func (m *Metrics) ObserveLoadError(err error) {
	m.LoadErrorsTotal.WithLabelValues(loadErrorKind(err)).Inc()
}

func loadErrorKind(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrParse):
		return "parse"
	default:
		return "read"
	}
}

// Middleware records request count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, r)

		// get route pattern if available
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		m.HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
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
