// Package api exposes the promotion engine over HTTP: player evaluation,
// rule snapshot inspection, admin reload and operational health.
package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/vihabhat/Promotion-rule-engine/internal/engine"
	"github.com/vihabhat/Promotion-rule-engine/internal/store"
	"github.com/vihabhat/Promotion-rule-engine/internal/telemetry"
)

// Server wires the rule matcher, the rules source and telemetry behind the
// HTTP API.
type Server struct {
	matcher *engine.Matcher
	source  store.Source
	metrics *telemetry.Metrics
	log     zerolog.Logger

	adminAPIKey    string
	rateLimitPerIP int
}

func NewServer(m *engine.Matcher, src store.Source, met *telemetry.Metrics, log zerolog.Logger, adminKey string, rateLimitPerIP int) *Server {
	return &Server{
		matcher:        m,
		source:         src,
		metrics:        met,
		log:            log,
		adminAPIKey:    adminKey,
		rateLimitPerIP: rateLimitPerIP,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))
	r.Use(s.metrics.Middleware)

	// health
	r.Get("/healthz", s.handleHealth)

	// public: evaluation (rate limited per client IP)
	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(
			s.rateLimitPerIP,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, req *http.Request) {
				RateLimitedError(w, req, "evaluation rate limit exceeded")
			}),
		))
		r.Post("/v1/evaluate", s.handleEvaluate)
	})

	// public: snapshot inspection and rolling stats
	r.Get("/v1/rules", s.handleRules)
	r.Get("/v1/rules/info", s.handleRulesInfo)
	r.Get("/v1/metrics/summary", s.handleMetricsSummary)

	// admin (protected): reload rules from the source
	r.Post("/v1/rules/reload", s.authAdmin(s.handleReload))

	return r
}

// ApplyLoad publishes a load result as the serving snapshot and records it.
// Both the reload endpoint and the file watcher go through here.
func (s *Server) ApplyLoad(res *store.LoadResult) uint64 {
	version := s.matcher.SetRules(res.Rules)
	s.metrics.ObserveLoad(len(res.Rules), version, res.Dropped)
	return version
}

type healthResponse struct {
	Status  string `json:"status"`
	Rules   int    `json:"rules"`
	Version uint64 `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.matcher.Snapshot()
	status := s.metrics.Rolling.Status()

	code := http.StatusOK
	if status == telemetry.StatusDegraded || status == telemetry.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, healthResponse{
		Status:  status,
		Rules:   len(snap.Rules),
		Version: snap.Version,
	})
}

func (s *Server) handleMetricsSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Rolling.Summary())
}

// ---- middleware & helpers ----

func (s *Server) authAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		got := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer"))
		got = strings.TrimSpace(strings.TrimPrefix(got, "Bearer"))
		if got == "" {
			UnauthorizedError(w, r, "missing bearer token")
			return
		}
		// constant-time compare
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.adminAPIKey)) != 1 {
			ForbiddenError(w, r, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// requestLogger logs one line per completed request.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Int("status", ww.statusCode).
				Float64("duration_ms", float64(time.Since(start).Nanoseconds())/1e6).
				Msg("request completed")
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap supports http.ResponseController and middleware that unwrap writers.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
