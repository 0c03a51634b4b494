package telemetry

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vihabhat/Promotion-rule-engine/internal/engine"
	"github.com/vihabhat/Promotion-rule-engine/internal/rules"
)

func matchResult(ruleIDs ...string) engine.Result {
	res := engine.Result{PlayerID: "p1", MatchedRules: ruleIDs}
	for _, id := range ruleIDs {
		res.Promotions = append(res.Promotions, rules.Promotion{
			ID:   "promo_" + id,
			Type: rules.PromoBonusCredits,
		})
	}
	return res
}

func TestRollingStats_RecordAndSummary(t *testing.T) {
	current := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	s := NewRollingStats(func() time.Time { return current })

	player := engine.Player{"player_id": "p1", "spend_tier": "gold", "country": "US"}

	s.Record(player, matchResult("vip_bonus"), 5*time.Millisecond, nil)
	s.Record(player, matchResult("vip_bonus", "cashback"), 20*time.Millisecond, nil)
	s.Record(engine.Player{"player_id": "p2", "country": "DE"}, engine.Result{PlayerID: "p2"}, 700*time.Millisecond, nil)
	s.Record(engine.Player{}, engine.Result{}, 2*time.Millisecond, errors.New("player_id is required"))

	current = current.Add(2 * time.Second)
	sum := s.Summary()

	if sum.Evaluations != 4 {
		t.Fatalf("expected 4 evaluations, got %d", sum.Evaluations)
	}
	if sum.Matches != 2 {
		t.Fatalf("expected 2 matches, got %d", sum.Matches)
	}
	if sum.Errors != 1 {
		t.Fatalf("expected 1 error, got %d", sum.Errors)
	}
	if sum.HitRate != 0.5 {
		t.Fatalf("expected hit rate 0.5, got %v", sum.HitRate)
	}
	if sum.AvgLatencyMs != 181.75 {
		t.Fatalf("expected avg latency 181.75ms, got %v", sum.AvgLatencyMs)
	}
	if sum.UptimeSeconds != 2 {
		t.Fatalf("expected uptime 2s, got %v", sum.UptimeSeconds)
	}
	if sum.EvaluationsPerSecond != 2 {
		t.Fatalf("expected 2 evaluations/s, got %v", sum.EvaluationsPerSecond)
	}

	if sum.LatencyBands["0-10ms"] != 2 || sum.LatencyBands["10-50ms"] != 1 || sum.LatencyBands["500ms+"] != 1 {
		t.Fatalf("unexpected latency bands: %v", sum.LatencyBands)
	}
	if sum.RuleHits["vip_bonus"] != 2 || sum.RuleHits["cashback"] != 1 {
		t.Fatalf("unexpected rule hits: %v", sum.RuleHits)
	}
	if sum.PromotionTypes["bonus_credits"] != 3 {
		t.Fatalf("expected 3 bonus_credits grants, got %v", sum.PromotionTypes)
	}
	if sum.Tiers["gold"] != 2 {
		t.Fatalf("unexpected tiers: %v", sum.Tiers)
	}
	if sum.TopCountries["US"] != 2 || sum.TopCountries["DE"] != 1 {
		t.Fatalf("unexpected countries: %v", sum.TopCountries)
	}

	bucket, ok := sum.Hourly["2026-03-14T09"]
	if !ok {
		t.Fatalf("expected an hourly bucket for 09:00, got %v", sum.Hourly)
	}
	if bucket.Evaluations != 4 || bucket.Matches != 2 || bucket.Errors != 1 {
		t.Fatalf("unexpected hourly bucket: %+v", bucket)
	}
}

func TestRollingStats_LatencyBandBoundaries(t *testing.T) {
	tests := []struct {
		d    time.Duration
		band string
	}{
		{0, "0-10ms"},
		{9 * time.Millisecond, "0-10ms"},
		{10 * time.Millisecond, "10-50ms"},
		{49 * time.Millisecond, "10-50ms"},
		{50 * time.Millisecond, "50-100ms"},
		{99 * time.Millisecond, "50-100ms"},
		{100 * time.Millisecond, "100-500ms"},
		{499 * time.Millisecond, "100-500ms"},
		{500 * time.Millisecond, "500ms+"},
		{3 * time.Second, "500ms+"},
	}
	for _, tt := range tests {
		t.Run(tt.d.String(), func(t *testing.T) {
			s := NewRollingStats(nil)
			s.Record(engine.Player{"player_id": "p1"}, engine.Result{PlayerID: "p1"}, tt.d, nil)
			sum := s.Summary()
			if sum.LatencyBands[tt.band] != 1 {
				t.Fatalf("expected %v in band %s, got %v", tt.d, tt.band, sum.LatencyBands)
			}
		})
	}
}

func TestRollingStats_HourlySeriesIsBounded(t *testing.T) {
	current := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	s := NewRollingStats(func() time.Time { return current })

	for i := 0; i < 25; i++ {
		s.Record(engine.Player{"player_id": "p1"}, engine.Result{PlayerID: "p1"}, time.Millisecond, nil)
		current = current.Add(time.Hour)
	}
	current = current.Add(-time.Hour)

	sum := s.Summary()
	if len(sum.Hourly) != 24 {
		t.Fatalf("expected 24 hourly buckets, got %d", len(sum.Hourly))
	}
	if _, ok := sum.Hourly["2026-03-14T00"]; ok {
		t.Fatal("expected the oldest hour to be evicted")
	}
	if _, ok := sum.Hourly["2026-03-15T00"]; !ok {
		t.Fatalf("expected the newest hour to be present, got %v", sum.Hourly)
	}
}

func TestRollingStats_Status(t *testing.T) {
	fast := time.Millisecond

	tests := []struct {
		name   string
		record func(s *RollingStats)
		want   string
	}{
		{
			name:   "no evaluations yet",
			record: func(s *RollingStats) {},
			want:   StatusHealthy,
		},
		{
			name: "error rate above 10 percent",
			record: func(s *RollingStats) {
				for i := 0; i < 17; i++ {
					s.Record(engine.Player{"player_id": "p1"}, matchResult("r1"), fast, nil)
				}
				for i := 0; i < 3; i++ {
					s.Record(engine.Player{}, engine.Result{}, fast, errors.New("boom"))
				}
			},
			want: StatusUnhealthy,
		},
		{
			name: "error rate exactly 10 percent stays healthy",
			record: func(s *RollingStats) {
				for i := 0; i < 9; i++ {
					s.Record(engine.Player{"player_id": "p1"}, matchResult("r1"), fast, nil)
				}
				s.Record(engine.Player{}, engine.Result{}, fast, errors.New("boom"))
			},
			want: StatusHealthy,
		},
		{
			name: "average latency above one second",
			record: func(s *RollingStats) {
				s.Record(engine.Player{"player_id": "p1"}, matchResult("r1"), 1500*time.Millisecond, nil)
				s.Record(engine.Player{"player_id": "p1"}, matchResult("r1"), 1500*time.Millisecond, nil)
			},
			want: StatusDegraded,
		},
		{
			name: "low hit rate after one hundred evaluations",
			record: func(s *RollingStats) {
				for i := 0; i < 5; i++ {
					s.Record(engine.Player{"player_id": "p1"}, matchResult("r1"), fast, nil)
				}
				for i := 0; i < 95; i++ {
					s.Record(engine.Player{"player_id": "p1"}, engine.Result{PlayerID: "p1"}, fast, nil)
				}
			},
			want: StatusWarning,
		},
		{
			name: "low hit rate under one hundred evaluations",
			record: func(s *RollingStats) {
				for i := 0; i < 50; i++ {
					s.Record(engine.Player{"player_id": "p1"}, engine.Result{PlayerID: "p1"}, fast, nil)
				}
			},
			want: StatusHealthy,
		},
		{
			name: "healthy hit rate after one hundred evaluations",
			record: func(s *RollingStats) {
				for i := 0; i < 50; i++ {
					s.Record(engine.Player{"player_id": "p1"}, matchResult("r1"), fast, nil)
					s.Record(engine.Player{"player_id": "p1"}, engine.Result{PlayerID: "p1"}, fast, nil)
				}
			},
			want: StatusHealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewRollingStats(nil)
			tt.record(s)
			if got := s.Status(); got != tt.want {
				t.Fatalf("expected status %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRollingStats_ErrorsSkipPlayerFacets(t *testing.T) {
	s := NewRollingStats(nil)
	s.Record(engine.Player{"player_id": "p1", "spend_tier": "vip", "country": "SE"}, engine.Result{}, time.Millisecond, errors.New("boom"))

	sum := s.Summary()
	if len(sum.Tiers) != 0 || len(sum.TopCountries) != 0 {
		t.Fatalf("expected no facets for failed evaluations, got tiers=%v countries=%v", sum.Tiers, sum.TopCountries)
	}
	if sum.Errors != 1 || sum.Evaluations != 1 {
		t.Fatalf("expected the error itself to count, got %+v", sum)
	}
}

func TestRollingStats_TopCountriesKeepsTen(t *testing.T) {
	s := NewRollingStats(nil)

	for i := 1; i <= 12; i++ {
		country := fmt.Sprintf("C%02d", i)
		for j := 0; j < i; j++ {
			s.Record(engine.Player{"player_id": "p1", "country": country}, engine.Result{PlayerID: "p1"}, time.Millisecond, nil)
		}
	}

	sum := s.Summary()
	if len(sum.TopCountries) != 10 {
		t.Fatalf("expected 10 countries, got %d: %v", len(sum.TopCountries), sum.TopCountries)
	}
	for _, dropped := range []string{"C01", "C02"} {
		if _, ok := sum.TopCountries[dropped]; ok {
			t.Fatalf("expected %s to be dropped, got %v", dropped, sum.TopCountries)
		}
	}
	if sum.TopCountries["C12"] != 12 || sum.TopCountries["C03"] != 3 {
		t.Fatalf("unexpected counts: %v", sum.TopCountries)
	}
}
