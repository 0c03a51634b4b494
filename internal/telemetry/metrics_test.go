package telemetry

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vihabhat/Promotion-rule-engine/internal/engine"
	"github.com/vihabhat/Promotion-rule-engine/internal/store"
)

func TestNew(t *testing.T) {
	m := New()
	if m.Registry == nil {
		t.Fatal("expected non-nil Registry")
	}
	if m.Rolling == nil {
		t.Fatal("expected non-nil Rolling")
	}
	m.RulesLoaded.Set(3)
	fams, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(fams) == 0 {
		t.Fatal("expected at least one metric family after a sample")
	}
}

func TestObserveEvaluation(t *testing.T) {
	m := New()
	player := engine.Player{"player_id": "p1", "spend_tier": "gold"}

	m.ObserveEvaluation(player, matchResult("vip_bonus"), 2*time.Millisecond, nil)
	m.ObserveEvaluation(player, matchResult("vip_bonus", "cashback"), 2*time.Millisecond, nil)
	m.ObserveEvaluation(player, engine.Result{PlayerID: "p1"}, time.Millisecond, nil)
	m.ObserveEvaluation(engine.Player{}, engine.Result{}, 0, engine.ErrMissingPlayerID)

	if v := testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("match")); v != 2 {
		t.Fatalf("expected 2 matches, got %v", v)
	}
	if v := testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("no_match")); v != 1 {
		t.Fatalf("expected 1 no_match, got %v", v)
	}
	if v := testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("invalid_input")); v != 1 {
		t.Fatalf("expected 1 invalid_input, got %v", v)
	}
	if v := testutil.ToFloat64(m.RuleHitsTotal.WithLabelValues("vip_bonus")); v != 2 {
		t.Fatalf("expected 2 vip_bonus hits, got %v", v)
	}
	if v := testutil.ToFloat64(m.PromotionsGranted.WithLabelValues("bonus_credits")); v != 3 {
		t.Fatalf("expected 3 bonus_credits grants, got %v", v)
	}
	if got := m.Rolling.Summary().Evaluations; got != 4 {
		t.Fatalf("expected rolling stats to see 4 evaluations, got %d", got)
	}
}

func TestObserveLoad(t *testing.T) {
	m := New()

	m.ObserveLoad(7, 3, []error{errors.New("bad rule"), errors.New("worse rule")})

	if v := testutil.ToFloat64(m.RulesLoaded); v != 7 {
		t.Fatalf("expected 7 rules loaded, got %v", v)
	}
	if v := testutil.ToFloat64(m.SnapshotVersion); v != 3 {
		t.Fatalf("expected snapshot version 3, got %v", v)
	}
	if v := testutil.ToFloat64(m.LoadErrorsTotal.WithLabelValues("validation")); v != 2 {
		t.Fatalf("expected 2 validation errors, got %v", v)
	}
}

func TestObserveLoadError(t *testing.T) {
	m := New()

	m.ObserveLoadError(fmt.Errorf("%w: /tmp/rules.yaml", store.ErrNotFound))
	m.ObserveLoadError(fmt.Errorf("%w: bad yaml", store.ErrParse))
	m.ObserveLoadError(errors.New("disk on fire"))

	if v := testutil.ToFloat64(m.LoadErrorsTotal.WithLabelValues("not_found")); v != 1 {
		t.Fatalf("expected 1 not_found, got %v", v)
	}
	if v := testutil.ToFloat64(m.LoadErrorsTotal.WithLabelValues("parse")); v != 1 {
		t.Fatalf("expected 1 parse, got %v", v)
	}
	if v := testutil.ToFloat64(m.LoadErrorsTotal.WithLabelValues("read")); v != 1 {
		t.Fatalf("expected 1 read, got %v", v)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.RulesLoaded.Set(5)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	body, _ := io.ReadAll(rec.Result().Body)
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(string(body), "promo_rules_loaded 5") {
		t.Fatal("expected response to contain promo_rules_loaded 5")
	}
}

func TestMiddleware(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/v1/players/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/v1/evaluate", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	for _, path := range []string{"/v1/players/a", "/v1/players/b"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
	}
	resp, err := http.Post(srv.URL+"/v1/evaluate", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	// Both /v1/players requests collapse into one route pattern series.
	if v := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/v1/players/{id}", "GET", "OK")); v != 2 {
		t.Fatalf("expected 2 GET requests on the pattern, got %v", v)
	}
	if v := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/v1/evaluate", "POST", "Bad Request")); v != 1 {
		t.Fatalf("expected 1 POST request, got %v", v)
	}
}
