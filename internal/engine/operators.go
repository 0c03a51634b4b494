package engine

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/vihabhat/Promotion-rule-engine/internal/rules"
)

// OperatorHandler evaluates one condition operator.
type OperatorHandler interface {
	Check(playerValue, ruleValue any) bool
}

var (
	operatorHandlers = map[rules.Operator]OperatorHandler{
		rules.OpEq:        equalsHandler{},
		rules.OpNe:        notEqualsHandler{},
		rules.OpGt:        numericCompareHandler{cmp: func(a, b float64) bool { return a > b }},
		rules.OpGte:       numericCompareHandler{cmp: func(a, b float64) bool { return a >= b }},
		rules.OpLt:        numericCompareHandler{cmp: func(a, b float64) bool { return a < b }},
		rules.OpLte:       numericCompareHandler{cmp: func(a, b float64) bool { return a <= b }},
		rules.OpIn:        inHandler{},
		rules.OpNotIn:     notInHandler{},
		rules.OpContains:  containsHandler{},
		rules.OpRegex:     regexHandler{},
		rules.OpVersionGt: semverCompareHandler{cmp: func(a, b *semver.Version) bool { return a.GreaterThan(b) }},
		rules.OpVersionLt: semverCompareHandler{cmp: func(a, b *semver.Version) bool { return a.LessThan(b) }},
	}
	// regexCache keeps compiled patterns for the hot evaluation path.
	// Expected value type is *regexp.Regexp.
	regexCache sync.Map
)

// Apply evaluates a single operator against a player value. A nil player
// value fails every operator, negated ones included, and an unknown
// operator always evaluates to false.
func Apply(op rules.Operator, playerValue, ruleValue any) bool {
	if playerValue == nil {
		return false
	}
	h, ok := getOperatorHandler(op)
	if !ok {
		return false
	}
	return h.Check(playerValue, ruleValue)
}

// conditionMet reports whether a player field value satisfies one condition,
// preferring the pattern compiled at rule build time.
func conditionMet(c rules.Condition, value any) bool {
	if value == nil {
		return false
	}
	if c.Operator.Normalize() == rules.OpRegex {
		if rx := c.Pattern(); rx != nil {
			s, ok := toString(value)
			return ok && rx.MatchString(s)
		}
	}
	return Apply(c.Operator, value, c.Value)
}

func getOperatorHandler(op rules.Operator) (OperatorHandler, bool) {
	h, ok := operatorHandlers[op.Normalize()]
	return h, ok
}

type equalsHandler struct{}

// Check compares same-kind values only: strings to strings, numbers to
// numbers across numeric types, bools to bools. "10" never equals 10.
func (equalsHandler) Check(playerValue, ruleValue any) bool {
	if player, ok := toString(playerValue); ok {
		rule, ok := toString(ruleValue)
		return ok && player == rule
	}
	if player, ok := toFloat64(playerValue); ok {
		rule, ok := toFloat64(ruleValue)
		return ok && player == rule
	}
	if player, ok := playerValue.(bool); ok {
		rule, ok := ruleValue.(bool)
		return ok && player == rule
	}
	return false
}

type notEqualsHandler struct{}

func (notEqualsHandler) Check(playerValue, ruleValue any) bool {
	return !equalsHandler{}.Check(playerValue, ruleValue)
}

type numericCompareHandler struct {
	cmp func(a, b float64) bool
}

func (h numericCompareHandler) Check(playerValue, ruleValue any) bool {
	player, ok := parseNumeric(playerValue)
	if !ok {
		return false
	}
	rule, ok := parseNumeric(ruleValue)
	if !ok {
		return false
	}
	return h.cmp(player, rule)
}

type inHandler struct{}

func (inHandler) Check(playerValue, ruleValue any) bool {
	list, ok := toSlice(ruleValue)
	if !ok {
		return false
	}
	return memberOf(playerValue, list)
}

type notInHandler struct{}

// Check fails on a malformed list instead of negating it, so a broken rule
// value cannot turn into a pass.
func (notInHandler) Check(playerValue, ruleValue any) bool {
	list, ok := toSlice(ruleValue)
	if !ok {
		return false
	}
	return !memberOf(playerValue, list)
}

type containsHandler struct{}

// Check treats a list player value as membership and a string player value
// as a case-sensitive substring test.
func (containsHandler) Check(playerValue, ruleValue any) bool {
	if list, ok := toSlice(playerValue); ok {
		return memberOf(ruleValue, list)
	}
	player, ok := toString(playerValue)
	if !ok {
		return false
	}
	rule, ok := toString(ruleValue)
	if !ok {
		return false
	}
	return strings.Contains(player, rule)
}

type regexHandler struct{}

func (regexHandler) Check(playerValue, ruleValue any) bool {
	player, ok := toString(playerValue)
	if !ok {
		return false
	}
	pattern, ok := toString(ruleValue)
	if !ok {
		return false
	}

	rx, ok := getCompiledRegex(pattern)
	if !ok {
		return false
	}
	return rx.MatchString(player)
}

type semverCompareHandler struct {
	cmp func(a, b *semver.Version) bool
}

func (h semverCompareHandler) Check(playerValue, ruleValue any) bool {
	playerStr, ok := toString(playerValue)
	if !ok {
		return false
	}
	ruleStr, ok := toString(ruleValue)
	if !ok {
		return false
	}
	playerVer, err := semver.NewVersion(playerStr)
	if err != nil {
		return false
	}
	ruleVer, err := semver.NewVersion(ruleStr)
	if err != nil {
		return false
	}
	return h.cmp(playerVer, ruleVer)
}

func memberOf(value any, list []any) bool {
	eq := equalsHandler{}
	for _, item := range list {
		if eq.Check(value, item) {
			return true
		}
	}
	return false
}

func getCompiledRegex(pattern string) (*regexp.Regexp, bool) {
	if cached, ok := regexCache.Load(pattern); ok {
		rx, ok := cached.(*regexp.Regexp)
		return rx, ok
	}

	rx, err := rules.CompilePattern(pattern)
	if err != nil {
		return nil, false
	}
	regexCache.Store(pattern, rx)
	return rx, true
}

func toString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// parseNumeric widens toFloat64 to numeric strings so ordering operators can
// compare values like "42" against numeric thresholds.
func parseNumeric(v any) (float64, bool) {
	if f, ok := toFloat64(v); ok {
		return f, true
	}
	if s, ok := toString(v); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return 0, false
}

func toSlice(v any) ([]any, bool) {
	switch values := v.(type) {
	case []any:
		return values, true
	case []string:
		out := make([]any, len(values))
		for i, s := range values {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]any, len(values))
		for i, n := range values {
			out[i] = n
		}
		return out, true
	case []float64:
		out := make([]any, len(values))
		for i, f := range values {
			out[i] = f
		}
		return out, true
	default:
		return nil, false
	}
}
