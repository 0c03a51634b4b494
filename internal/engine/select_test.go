package engine

import (
	"errors"
	"testing"

	"github.com/vihabhat/Promotion-rule-engine/internal/rules"
)

func weightedRule(id string, weight float64) rules.Rule {
	r := testRule(id, 1, nil)
	r.Weight = &weight
	return r
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in      string
		want    Selection
		wantErr bool
	}{
		{in: "", want: SelectAll},
		{in: "all", want: SelectAll},
		{in: "weighted", want: SelectWeighted},
		{in: "priority", want: SelectPriority},
		{in: "WEIGHTED", want: SelectWeighted},
		{in: " priority ", want: SelectPriority},
		{in: "best", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseSelection(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownSelection) {
				t.Errorf("ParseSelection(%q) error = %v, want ErrUnknownSelection", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseSelection(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestSelectWeighted_DeterministicDraws(t *testing.T) {
	// Weights 1 and 3: draws in [0,1] pick the first, (1,4] the second
	rs := []rules.Rule{weightedRule("light", 1), weightedRule("heavy", 3)}

	tests := []struct {
		rnd  float64
		want string
	}{
		{rnd: 0.0, want: "light"},
		{rnd: 0.2, want: "light"},  // draw 0.8
		{rnd: 0.25, want: "light"}, // draw 1.0, boundary stays with the first
		{rnd: 0.3, want: "heavy"},  // draw 1.2
		{rnd: 0.9, want: "heavy"},  // draw 3.6
	}
	for _, tt := range tests {
		m := New(WithSelection(SelectWeighted), WithRand(func() float64 { return tt.rnd }))
		m.SetRules(rs)
		res, err := m.Evaluate(Player{"player_id": "p1"})
		if err != nil {
			t.Fatalf("Evaluate() error: %v", err)
		}
		if len(res.MatchedRules) != 1 {
			t.Fatalf("rnd=%v: expected one winner, got %v", tt.rnd, res.MatchedRules)
		}
		if res.MatchedRules[0] != tt.want {
			t.Errorf("rnd=%v: winner = %s, want %s", tt.rnd, res.MatchedRules[0], tt.want)
		}
	}
}

func TestSelectWeighted_DefaultWeightIsOne(t *testing.T) {
	// No weights set: uniform over both candidates
	rs := []rules.Rule{testRule("first", 1, nil), testRule("second", 1, nil)}

	m := New(WithSelection(SelectWeighted), WithRand(func() float64 { return 0.9 }))
	m.SetRules(rs)
	res, err := m.Evaluate(Player{"player_id": "p1"})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	// draw 1.8 over cumulative [1, 2] lands on the second
	if len(res.MatchedRules) != 1 || res.MatchedRules[0] != "second" {
		t.Errorf("MatchedRules = %v, want [second]", res.MatchedRules)
	}
}

func TestSelectWeighted_ShortfallFallsBackToLast(t *testing.T) {
	rs := []rules.Rule{weightedRule("a", 1), weightedRule("b", 1)}

	// An out-of-contract randomness source must still produce a winner
	m := New(WithSelection(SelectWeighted), WithRand(func() float64 { return 1.5 }))
	m.SetRules(rs)
	res, err := m.Evaluate(Player{"player_id": "p1"})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(res.MatchedRules) != 1 || res.MatchedRules[0] != "b" {
		t.Errorf("MatchedRules = %v, want [b]", res.MatchedRules)
	}
}

func TestSelectWeighted_SingleCandidate(t *testing.T) {
	m := New(WithSelection(SelectWeighted))
	m.SetRules([]rules.Rule{testRule("only", 1, nil)})
	res, err := m.Evaluate(Player{"player_id": "p1"})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(res.MatchedRules) != 1 || res.MatchedRules[0] != "only" {
		t.Errorf("MatchedRules = %v, want [only]", res.MatchedRules)
	}
}

func TestSelectPriority_HighestWins(t *testing.T) {
	m := New(WithSelection(SelectPriority))
	m.SetRules([]rules.Rule{
		testRule("low", 1, nil),
		testRule("high", 10, nil),
		testRule("mid", 5, nil),
	})
	res, err := m.Evaluate(Player{"player_id": "p1"})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(res.MatchedRules) != 1 || res.MatchedRules[0] != "high" {
		t.Errorf("MatchedRules = %v, want [high]", res.MatchedRules)
	}
}

func TestSelectPriority_TieBreaksByLoadOrder(t *testing.T) {
	m := New(WithSelection(SelectPriority))
	m.SetRules([]rules.Rule{
		testRule("first", 7, nil),
		testRule("second", 7, nil),
	})
	res, err := m.Evaluate(Player{"player_id": "p1"})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(res.MatchedRules) != 1 || res.MatchedRules[0] != "first" {
		t.Errorf("MatchedRules = %v, want [first]", res.MatchedRules)
	}
}

func TestSelectAll_KeepsEveryCandidate(t *testing.T) {
	m := New()
	m.SetRules([]rules.Rule{
		testRule("a", 1, nil),
		testRule("b", 9, nil),
	})
	res, err := m.Evaluate(Player{"player_id": "p1"})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(res.MatchedRules) != 2 {
		t.Errorf("MatchedRules = %v, want both", res.MatchedRules)
	}
}
