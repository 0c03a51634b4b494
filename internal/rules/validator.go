package rules

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors returned by FromRaw and BuildAll.
var (
	ErrInvalidRule      = errors.New("invalid rule")
	ErrInvalidOperator  = errors.New("invalid operator")
	ErrInvalidCondition = errors.New("invalid condition")
	ErrInvalidValueType = errors.New("invalid value type")
	ErrInvalidPromotion = errors.New("invalid promotion")
	ErrInvalidWindow    = errors.New("invalid time window")
)

// validOperators is the set of all recognised condition operators.
var validOperators = map[Operator]struct{}{
	OpEq:        {},
	OpNe:        {},
	OpGt:        {},
	OpGte:       {},
	OpLt:        {},
	OpLte:       {},
	OpIn:        {},
	OpNotIn:     {},
	OpContains:  {},
	OpRegex:     {},
	OpVersionGt: {},
	OpVersionLt: {},
}

// validDays is the set of accepted day-of-week names (lowercase).
var validDays = map[string]struct{}{
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
}

// timePattern matches zero-padded 24h "HH:MM" strings.
var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// BuildAll builds every document entry in order. Entries that fail validation
// are reported in errs and skipped; the remaining rules still load. It never
// aborts the whole batch.
func BuildAll(entries []any) (rs []Rule, errs []error) {
	rs = make([]Rule, 0, len(entries))
	for i, entry := range entries {
		raw, ok := entry.(map[string]any)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: entry %d is not a mapping", ErrInvalidRule, i))
			continue
		}
		r, err := FromRaw(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		rs = append(rs, r)
	}
	return rs, errs
}

// FromRaw builds one Rule from a loosely decoded document entry, applying
// defaults and validating every field. It is a pure function: raw is never
// mutated.
//
// Defaults: enabled is true, the description is synthesized from the rule id,
// and the promotion currency is USD.
func FromRaw(raw map[string]any) (Rule, error) {
	id, ok := raw["id"].(string)
	if !ok || strings.TrimSpace(id) == "" {
		return Rule{}, fmt.Errorf("%w: id must be a non-empty string", ErrInvalidRule)
	}

	r := Rule{ID: id, Enabled: true}

	prioRaw, ok := raw["priority"]
	if !ok {
		return Rule{}, fmt.Errorf("%w: rule %q: missing priority", ErrInvalidRule, id)
	}
	prio, ok := toInt(prioRaw)
	if !ok {
		return Rule{}, fmt.Errorf("%w: rule %q: priority must be an integer", ErrInvalidRule, id)
	}
	r.Priority = prio

	if v, ok := raw["enabled"]; ok {
		b, ok := v.(bool)
		if !ok {
			return Rule{}, fmt.Errorf("%w: rule %q: enabled must be a boolean", ErrInvalidRule, id)
		}
		r.Enabled = b
	}

	if v, ok := raw["description"]; ok {
		s, ok := v.(string)
		if !ok {
			return Rule{}, fmt.Errorf("%w: rule %q: description must be a string", ErrInvalidRule, id)
		}
		r.Description = s
	}
	if r.Description == "" {
		r.Description = fmt.Sprintf("Promotion rule %s", id)
	}

	condRaw, ok := raw["conditions"]
	if !ok {
		return Rule{}, fmt.Errorf("%w: rule %q: missing conditions", ErrInvalidRule, id)
	}
	conds, err := buildConditions(id, condRaw)
	if err != nil {
		return Rule{}, err
	}
	r.Conditions = conds

	promoRaw, ok := raw["promotion"]
	if !ok {
		return Rule{}, fmt.Errorf("%w: rule %q: missing promotion", ErrInvalidRule, id)
	}
	promo, err := buildPromotion(id, promoRaw)
	if err != nil {
		return Rule{}, err
	}
	r.Promotion = promo

	if v, ok := raw["weight"]; ok {
		w, ok := toFloat(v)
		if !ok || w <= 0 {
			return Rule{}, fmt.Errorf("%w: rule %q: weight must be a positive number", ErrInvalidRule, id)
		}
		r.Weight = &w
	}

	if v, ok := raw["ab_bucket"]; ok {
		spec, err := buildBucket(id, v)
		if err != nil {
			return Rule{}, err
		}
		r.Bucket = spec
	}

	if v, ok := raw["time_window"]; ok {
		win, err := buildWindow(id, v)
		if err != nil {
			return Rule{}, err
		}
		r.Window = win
	}

	return r, nil
}

// buildConditions validates the conditions mapping. An empty mapping is
// valid: the rule then applies to every player, subject to its other gates.
func buildConditions(ruleID string, raw any) (map[string]Condition, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: rule %q: conditions must be a mapping", ErrInvalidCondition, ruleID)
	}

	fields := make([]string, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := make(map[string]Condition, len(m))
	for _, field := range fields {
		c, err := buildCondition(ruleID, field, m[field])
		if err != nil {
			return nil, err
		}
		out[field] = c
	}
	return out, nil
}

// buildCondition accepts the scalar shorthand (implicit equality) or the
// explicit single-operator mapping form.
func buildCondition(ruleID, field string, raw any) (Condition, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		if !isScalar(raw) {
			return Condition{}, fmt.Errorf("%w: rule %q: condition %q shorthand must be a scalar", ErrInvalidValueType, ruleID, field)
		}
		return Condition{Operator: OpEq, Value: raw}, nil
	}

	if len(m) != 1 {
		return Condition{}, fmt.Errorf("%w: rule %q: condition %q must have exactly one operator", ErrInvalidCondition, ruleID, field)
	}

	for opName, value := range m {
		op := Operator(opName).Normalize()
		if _, ok := validOperators[op]; !ok {
			return Condition{}, fmt.Errorf("%w: rule %q: condition %q has operator %q", ErrInvalidOperator, ruleID, field, opName)
		}
		if err := checkValueType(ruleID, field, op, value); err != nil {
			return Condition{}, err
		}

		c := Condition{Operator: op, Value: value}
		if op == OpRegex {
			re, err := CompilePattern(value.(string))
			if err != nil {
				return Condition{}, fmt.Errorf("%w: rule %q: condition %q pattern does not compile: %v", ErrInvalidValueType, ruleID, field, err)
			}
			c.re = re
		}
		return c, nil
	}
	return Condition{}, fmt.Errorf("%w: rule %q: condition %q is empty", ErrInvalidCondition, ruleID, field)
}

// checkValueType checks that the condition value has a type compatible with
// the operator. It uses explicit type assertions, no reflection.
func checkValueType(ruleID, field string, op Operator, v any) error {
	switch op {
	case OpIn, OpNotIn:
		if !isSlice(v) {
			return fmt.Errorf("%w: rule %q: condition %q operator %q requires a list value", ErrInvalidValueType, ruleID, field, op)
		}

	case OpGt, OpGte, OpLt, OpLte:
		if !isNumericValue(v) {
			return fmt.Errorf("%w: rule %q: condition %q operator %q requires a numeric value", ErrInvalidValueType, ruleID, field, op)
		}

	case OpRegex, OpVersionGt, OpVersionLt:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("%w: rule %q: condition %q operator %q requires a string value", ErrInvalidValueType, ruleID, field, op)
		}

	case OpEq, OpNe, OpContains:
		if !isScalar(v) {
			return fmt.Errorf("%w: rule %q: condition %q operator %q requires a scalar value", ErrInvalidValueType, ruleID, field, op)
		}
	}
	return nil
}

func buildPromotion(ruleID string, raw any) (Promotion, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return Promotion{}, fmt.Errorf("%w: rule %q: promotion must be a mapping", ErrInvalidPromotion, ruleID)
	}

	id, ok := m["id"].(string)
	if !ok || strings.TrimSpace(id) == "" {
		return Promotion{}, fmt.Errorf("%w: rule %q: promotion id must be a non-empty string", ErrInvalidPromotion, ruleID)
	}
	typ, ok := m["type"].(string)
	if !ok || strings.TrimSpace(typ) == "" {
		return Promotion{}, fmt.Errorf("%w: rule %q: promotion type must be a non-empty string", ErrInvalidPromotion, ruleID)
	}

	p := Promotion{ID: id, Type: typ, Currency: "USD"}

	for _, key := range []string{"amount", "multiplier", "duration_hours", "max_amount", "min_amount"} {
		v, ok := m[key]
		if !ok {
			continue
		}
		f, ok := toFloat(v)
		if !ok {
			return Promotion{}, fmt.Errorf("%w: rule %q: promotion %s must be a number", ErrInvalidPromotion, ruleID, key)
		}
		switch key {
		case "amount":
			p.Amount = &f
		case "multiplier":
			p.Multiplier = &f
		case "duration_hours":
			p.DurationHours = &f
		case "max_amount":
			p.MaxAmount = &f
		case "min_amount":
			p.MinAmount = &f
		}
	}

	if v, ok := m["currency"].(string); ok && v != "" {
		p.Currency = v
	}
	if v, ok := m["description"].(string); ok {
		p.Description = v
	}
	if p.Description == "" {
		p.Description = typ + " promotion"
	}
	if v, ok := m["terms_and_conditions"].(string); ok {
		p.Terms = v
	}

	if v, ok := m["expires_at"]; ok {
		exp, err := toTime(v)
		if err != nil {
			return Promotion{}, fmt.Errorf("%w: rule %q: promotion expires_at: %v", ErrInvalidPromotion, ruleID, err)
		}
		p.ExpiresAt = &exp
	}

	return p, nil
}

func buildBucket(ruleID string, raw any) (*BucketSpec, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: rule %q: ab_bucket must be a mapping with a percentage", ErrInvalidRule, ruleID)
	}
	v, ok := m["percentage"]
	if !ok {
		return nil, fmt.Errorf("%w: rule %q: ab_bucket is missing percentage", ErrInvalidRule, ruleID)
	}
	pct, ok := toInt(v)
	if !ok || pct < 0 || pct > 100 {
		return nil, fmt.Errorf("%w: rule %q: ab_bucket percentage must be an integer between 0 and 100", ErrInvalidRule, ruleID)
	}
	return &BucketSpec{Percentage: pct}, nil
}

func buildWindow(ruleID string, raw any) (*TimeWindow, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: rule %q: time_window must be a mapping", ErrInvalidWindow, ruleID)
	}

	w := &TimeWindow{}
	var err error
	if w.Start, err = windowTime(m, "start_time", ruleID); err != nil {
		return nil, err
	}
	if w.End, err = windowTime(m, "end_time", ruleID); err != nil {
		return nil, err
	}

	if v, ok := m["days_of_week"]; ok {
		list, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: rule %q: time_window days_of_week must be a list", ErrInvalidWindow, ruleID)
		}
		for _, item := range list {
			day, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: rule %q: time_window day names must be strings", ErrInvalidWindow, ruleID)
			}
			if _, ok := validDays[strings.ToLower(day)]; !ok {
				return nil, fmt.Errorf("%w: rule %q: time_window has invalid day %q", ErrInvalidWindow, ruleID, day)
			}
			w.Days = append(w.Days, day)
		}
	}

	return w, nil
}

func windowTime(m map[string]any, key, ruleID string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok || !timePattern.MatchString(s) {
		return "", fmt.Errorf("%w: rule %q: time_window %s must be in HH:MM format", ErrInvalidWindow, ruleID, key)
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Loose-value coercions for YAML/JSON decoded documents
// ---------------------------------------------------------------------------

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return time.Parse(time.RFC3339, t)
	}
	return time.Time{}, fmt.Errorf("must be an RFC3339 timestamp")
}

// isSlice returns true for slice types that may appear after YAML or JSON
// unmarshaling or be provided programmatically.
func isSlice(v any) bool {
	switch v.(type) {
	case []any, []string, []int, []float64:
		return true
	}
	return false
}

// isNumericValue accepts numbers and numeric strings; ordering comparisons
// coerce both sides to float64 at evaluation time.
func isNumericValue(v any) bool {
	switch n := v.(type) {
	case int, int64, uint64, float32, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(n, 64)
		return err == nil
	}
	return false
}

// isScalar returns true for basic scalar types (string, bool, numeric).
func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, int, int64, uint64, float32, float64:
		return true
	}
	return false
}
