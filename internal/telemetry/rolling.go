package telemetry

import (
	"sort"
	"sync"
	"time"

	"github.com/vihabhat/Promotion-rule-engine/internal/engine"
)

// hourlyCap bounds the hourly series so a long-running process cannot grow
// it without limit. When full, the oldest hour is evicted.
const hourlyCap = 24

// Health status values derived from the rolling stats.
const (
	StatusHealthy   = "healthy"
	StatusWarning   = "warning"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// latencyBandLabels name the fixed latency bands, in order.
var latencyBandLabels = [5]string{"0-10ms", "10-50ms", "50-100ms", "100-500ms", "500ms+"}

// HourBucket aggregates one hour of evaluations.
type HourBucket struct {
	Evaluations int64 `json:"evaluations"`
	Matches     int64 `json:"matches"`
	Errors      int64 `json:"errors"`
}

// Summary is the JSON shape served by /v1/metrics/summary.
type Summary struct {
	Status               string                `json:"status"`
	UptimeSeconds        float64               `json:"uptime_seconds"`
	Evaluations          int64                 `json:"evaluations"`
	Matches              int64                 `json:"matches"`
	Errors               int64                 `json:"errors"`
	HitRate              float64               `json:"hit_rate"`
	AvgLatencyMs         float64               `json:"avg_latency_ms"`
	EvaluationsPerSecond float64               `json:"evaluations_per_second"`
	LatencyBands         map[string]int64      `json:"latency_bands"`
	RuleHits             map[string]int64      `json:"rule_hits"`
	PromotionTypes       map[string]int64      `json:"promotion_types"`
	Tiers                map[string]int64      `json:"tiers"`
	TopCountries         map[string]int64      `json:"top_countries"`
	Hourly               map[string]HourBucket `json:"hourly"`
}

// RollingStats keeps mutex-guarded lifetime counters and an hour-bucketed
// series bounded to hourlyCap entries. The clock is injectable so hourly
// bucketing is testable.
type RollingStats struct {
	now func() time.Time

	mu           sync.Mutex
	start        time.Time
	evaluations  int64
	matches      int64
	errors       int64
	totalLatency time.Duration
	bands        [5]int64
	ruleHits     map[string]int64
	promoTypes   map[string]int64
	tiers        map[string]int64
	countries    map[string]int64
	hourly       map[string]*HourBucket
}

// NewRollingStats returns empty stats using the given clock.
func NewRollingStats(now func() time.Time) *RollingStats {
	if now == nil {
		now = time.Now
	}
	return &RollingStats{
		now:        now,
		start:      now(),
		ruleHits:   make(map[string]int64),
		promoTypes: make(map[string]int64),
		tiers:      make(map[string]int64),
		countries:  make(map[string]int64),
		hourly:     make(map[string]*HourBucket),
	}
}

// Record folds one evaluation into the stats.
func (s *RollingStats) Record(p engine.Player, res engine.Result, d time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evaluations++
	s.totalLatency += d
	s.bands[latencyBand(d)]++

	hour := s.bucketFor(s.now())
	hour.Evaluations++

	if err != nil {
		s.errors++
		hour.Errors++
		return
	}

	if res.Matched() {
		s.matches++
		hour.Matches++
	}
	for _, id := range res.MatchedRules {
		s.ruleHits[id]++
	}
	for _, promo := range res.Promotions {
		s.promoTypes[promo.Type]++
	}
	if tier, ok := p["spend_tier"].(string); ok && tier != "" {
		s.tiers[tier]++
	}
	if country, ok := p["country"].(string); ok && country != "" {
		s.countries[country]++
	}
}

// Summary returns a copy of the current stats.
func (s *RollingStats) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	uptime := s.now().Sub(s.start).Seconds()
	out := Summary{
		Status:         s.status(),
		UptimeSeconds:  uptime,
		Evaluations:    s.evaluations,
		Matches:        s.matches,
		Errors:         s.errors,
		LatencyBands:   make(map[string]int64, len(latencyBandLabels)),
		RuleHits:       copyCounts(s.ruleHits),
		PromotionTypes: copyCounts(s.promoTypes),
		Tiers:          copyCounts(s.tiers),
		TopCountries:   topCounts(s.countries, 10),
		Hourly:         make(map[string]HourBucket, len(s.hourly)),
	}
	if s.evaluations > 0 {
		out.HitRate = float64(s.matches) / float64(s.evaluations)
		out.AvgLatencyMs = float64(s.totalLatency.Milliseconds()) / float64(s.evaluations)
	}
	if uptime > 0 {
		out.EvaluationsPerSecond = float64(s.evaluations) / uptime
	}
	for i, label := range latencyBandLabels {
		out.LatencyBands[label] = s.bands[i]
	}
	for k, b := range s.hourly {
		out.Hourly[k] = *b
	}
	return out
}

// Status derives the health of the engine from the rolling stats.
func (s *RollingStats) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status()
}

// status must be called with the mutex held.
//
// Thresholds: unhealthy when more than 10% of evaluations error, degraded
// when average latency exceeds one second, warning when the hit rate falls
// below 0.1 after at least 100 evaluations.
func (s *RollingStats) status() string {
	if s.evaluations == 0 {
		return StatusHealthy
	}
	if float64(s.errors)/float64(s.evaluations) > 0.10 {
		return StatusUnhealthy
	}
	avg := time.Duration(int64(s.totalLatency) / s.evaluations)
	if avg > time.Second {
		return StatusDegraded
	}
	if s.evaluations >= 100 && float64(s.matches)/float64(s.evaluations) < 0.1 {
		return StatusWarning
	}
	return StatusHealthy
}

// bucketFor must be called with the mutex held. Hour keys sort
// chronologically, so the minimum key is the oldest bucket.
func (s *RollingStats) bucketFor(t time.Time) *HourBucket {
	key := t.Format("2006-01-02T15")
	if b, ok := s.hourly[key]; ok {
		return b
	}
	if len(s.hourly) >= hourlyCap {
		oldest := ""
		for k := range s.hourly {
			if oldest == "" || k < oldest {
				oldest = k
			}
		}
		delete(s.hourly, oldest)
	}
	b := &HourBucket{}
	s.hourly[key] = b
	return b
}

func latencyBand(d time.Duration) int {
	switch {
	case d < 10*time.Millisecond:
		return 0
	case d < 50*time.Millisecond:
		return 1
	case d < 100*time.Millisecond:
		return 2
	case d < 500*time.Millisecond:
		return 3
	default:
		return 4
	}
}

func copyCounts(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// topCounts keeps the n largest entries, ties broken by name for
// deterministic output.
func topCounts(m map[string]int64, n int) map[string]int64 {
	if len(m) <= n {
		return copyCounts(m)
	}
	type kv struct {
		k string
		v int64
	}
	all := make([]kv, 0, len(m))
	for k, v := range m {
		all = append(all, kv{k, v})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].v != all[j].v {
			return all[i].v > all[j].v
		}
		return all[i].k < all[j].k
	})
	out := make(map[string]int64, n)
	for _, e := range all[:n] {
		out[e.k] = e.v
	}
	return out
}
