// Package engine evaluates player profiles against promotion rules.
//
// A Matcher holds the rule set in an immutable snapshot behind an atomic
// pointer: evaluation is lock-free and reload never blocks or tears an
// in-flight evaluation. Clock and randomness are injectable so time windows
// and weighted selection stay deterministic under test.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/vihabhat/Promotion-rule-engine/internal/bucket"
	"github.com/vihabhat/Promotion-rule-engine/internal/rules"
)

// ErrMissingPlayerID is returned when a profile carries no usable player_id.
// It is the only evaluation error; every other anomaly resolves to a
// non-match.
var ErrMissingPlayerID = errors.New("player_id is required")

// Snapshot is one published, immutable rule set. Callers must not mutate
// Rules.
type Snapshot struct {
	Rules   []rules.Rule
	Version uint64
	BuiltAt time.Time
	ETag    string
}

// Result is the outcome of evaluating one player profile.
type Result struct {
	PlayerID     string            `json:"player_id"`
	Promotions   []rules.Promotion `json:"promotions"`
	MatchedRules []string          `json:"matched_rules"`
	Evaluated    int               `json:"evaluated"`
}

// Matched reports whether any promotion applied. An empty result is the
// no-match signal, not an error.
func (r Result) Matched() bool {
	return len(r.Promotions) > 0
}

// Matcher evaluates players against the current rule snapshot.
type Matcher struct {
	snap      atomic.Pointer[Snapshot]
	version   atomic.Uint64
	now       func() time.Time
	rand      func() float64
	selection Selection
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithNow injects the clock used for time windows and promotion expiry.
func WithNow(now func() time.Time) Option {
	return func(m *Matcher) {
		if now != nil {
			m.now = now
		}
	}
}

// WithRand injects the randomness source for weighted selection. The
// function must return values in [0, 1).
func WithRand(rnd func() float64) Option {
	return func(m *Matcher) {
		if rnd != nil {
			m.rand = rnd
		}
	}
}

// WithSelection sets the strategy applied to the applicable rule set.
func WithSelection(s Selection) Option {
	return func(m *Matcher) {
		m.selection = s
	}
}

// New returns a Matcher serving an empty snapshot until SetRules is called.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		now:       time.Now,
		rand:      rand.Float64,
		selection: SelectAll,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.snap.Store(&Snapshot{
		Rules:   []rules.Rule{},
		BuiltAt: m.now(),
		ETag:    computeETag(nil),
	})
	return m
}

// SetRules publishes a new snapshot with one atomic pointer swap and returns
// its version. In-flight evaluations finish on the snapshot they started
// with.
func (m *Matcher) SetRules(rs []rules.Rule) uint64 {
	own := make([]rules.Rule, len(rs))
	copy(own, rs)
	snap := &Snapshot{
		Rules:   own,
		Version: m.version.Add(1),
		BuiltAt: m.now(),
		ETag:    computeETag(own),
	}
	m.snap.Store(snap)
	return snap.Version
}

// Snapshot returns the currently published rule set.
func (m *Matcher) Snapshot() *Snapshot {
	return m.snap.Load()
}

// Evaluate returns every applicable promotion for the profile in rule load
// order, reduced to a single winner when a selection strategy was opted
// into.
func (m *Matcher) Evaluate(p Player) (Result, error) {
	playerID, ok := p.ID()
	if !ok {
		return Result{}, ErrMissingPlayerID
	}

	snap := m.snap.Load()
	profile := p.normalize()
	now := m.now()

	candidates := make([]*rules.Rule, 0, 4)
	for i := range snap.Rules {
		if m.applies(&snap.Rules[i], profile, playerID, now) {
			candidates = append(candidates, &snap.Rules[i])
		}
	}
	candidates = m.selection.pick(candidates, m.rand)

	res := Result{
		PlayerID:     playerID,
		Promotions:   make([]rules.Promotion, 0, len(candidates)),
		MatchedRules: make([]string, 0, len(candidates)),
		Evaluated:    len(snap.Rules),
	}
	for _, r := range candidates {
		res.Promotions = append(res.Promotions, r.Promotion)
		res.MatchedRules = append(res.MatchedRules, r.ID)
	}
	return res, nil
}

func (m *Matcher) applies(r *rules.Rule, profile Player, playerID string, now time.Time) bool {
	if !r.Enabled {
		return false
	}
	for field, cond := range r.Conditions {
		v, _ := profile.Field(field)
		if !conditionMet(cond, v) {
			return false
		}
	}
	if r.Window != nil && !r.Window.ActiveAt(now) {
		return false
	}
	if !r.Promotion.ValidAt(now) {
		return false
	}
	if r.Bucket != nil && !bucket.InRollout(playerID, r.Bucket.Percentage) {
		return false
	}
	return true
}

func computeETag(rs []rules.Rule) string {
	blob, _ := json.Marshal(rs)
	return fmt.Sprintf(`W/"%x"`, xxhash.Sum64(blob))
}
