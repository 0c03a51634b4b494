package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vihabhat/Promotion-rule-engine/internal/rules"
)

// Selection decides how many of the applicable rules win an evaluation.
type Selection string

const (
	// SelectAll keeps every applicable rule in load order.
	SelectAll Selection = "all"
	// SelectWeighted draws one winner, weighted by rule weight (1.0 when
	// absent).
	SelectWeighted Selection = "weighted"
	// SelectPriority keeps the highest-priority rule, earliest load order
	// breaking ties.
	SelectPriority Selection = "priority"
)

// ErrUnknownSelection is returned by ParseSelection for unrecognized names.
var ErrUnknownSelection = errors.New("unknown selection strategy")

// ParseSelection parses a strategy name. The empty string means SelectAll.
func ParseSelection(s string) (Selection, error) {
	switch Selection(strings.ToLower(strings.TrimSpace(s))) {
	case "", SelectAll:
		return SelectAll, nil
	case SelectWeighted:
		return SelectWeighted, nil
	case SelectPriority:
		return SelectPriority, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSelection, s)
	}
}

func (s Selection) pick(candidates []*rules.Rule, rnd func() float64) []*rules.Rule {
	if len(candidates) <= 1 {
		return candidates
	}
	switch s {
	case SelectWeighted:
		return []*rules.Rule{pickWeighted(candidates, rnd)}
	case SelectPriority:
		return []*rules.Rule{pickPriority(candidates)}
	default:
		return candidates
	}
}

func pickWeighted(candidates []*rules.Rule, rnd func() float64) *rules.Rule {
	total := 0.0
	for _, r := range candidates {
		total += ruleWeight(r)
	}
	draw := rnd() * total
	cumulative := 0.0
	for _, r := range candidates {
		cumulative += ruleWeight(r)
		if draw <= cumulative {
			return r
		}
	}
	// Floating-point shortfall: the last candidate absorbs the remainder.
	return candidates[len(candidates)-1]
}

func pickPriority(candidates []*rules.Rule) *rules.Rule {
	best := candidates[0]
	for _, r := range candidates[1:] {
		if r.Priority > best.Priority {
			best = r
		}
	}
	return best
}

func ruleWeight(r *rules.Rule) float64 {
	if r.Weight == nil {
		return 1
	}
	return *r.Weight
}
