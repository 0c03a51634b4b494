// Package rules defines the promotion rule data model and its validation.
package rules

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// Operator represents a comparison operator used in rule conditions.
type Operator string

// Canonical condition operators (string values for clean serialization).
const (
	OpEq        Operator = "eq"
	OpNe        Operator = "ne"
	OpGt        Operator = "gt"
	OpGte       Operator = "gte"
	OpLt        Operator = "lt"
	OpLte       Operator = "lte"
	OpIn        Operator = "in"
	OpNotIn     Operator = "not_in"
	OpContains  Operator = "contains"
	OpRegex     Operator = "regex"
	OpVersionGt Operator = "version_gt"
	OpVersionLt Operator = "version_lt"
)

// Normalize folds accepted aliases onto the canonical operator names.
// Unknown operators pass through unchanged.
func (o Operator) Normalize() Operator {
	switch strings.ToLower(string(o)) {
	case "==", "eq", "equals":
		return OpEq
	case "!=", "ne", "neq", "not_equals":
		return OpNe
	case ">", "gt":
		return OpGt
	case ">=", "gte":
		return OpGte
	case "<", "lt":
		return OpLt
	case "<=", "lte":
		return OpLte
	case "in", "in_list":
		return OpIn
	case "not_in", "not_in_list", "nin":
		return OpNotIn
	case "contains":
		return OpContains
	case "regex", "matches":
		return OpRegex
	case "version_gt", "semver_gt":
		return OpVersionGt
	case "version_lt", "semver_lt":
		return OpVersionLt
	default:
		return o
	}
}

// Condition is a single predicate against one player profile field.
// When a rule carries several conditions they combine with AND semantics:
// all of them must hold for the rule to apply.
type Condition struct {
	Operator Operator `json:"operator" yaml:"operator"`
	Value    any      `json:"value" yaml:"value"`

	// re holds the pattern compiled by the builder for OpRegex conditions.
	re *regexp.Regexp
}

// Pattern returns the regex compiled at build time, or nil when the condition
// was constructed directly.
func (c Condition) Pattern() *regexp.Regexp {
	return c.re
}

// CompilePattern compiles a condition regex anchored at the start of the
// input, so "US-" matches "US-west" but not "EU-US-east". The end stays
// unanchored.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`\A(?:` + pattern + `)`)
}

// BucketSpec gates a rule to a stable percentage of the player population.
type BucketSpec struct {
	Percentage int `json:"percentage" yaml:"percentage"`
}

// Known promotion types. The set is open: rules may carry other type strings
// and still validate.
const (
	PromoBonusCredits  = "bonus_credits"
	PromoFreeSpins     = "free_spins"
	PromoCashback      = "cashback"
	PromoMultiplier    = "multiplier"
	PromoWelcomeBonus  = "welcome_bonus"
	PromoLoyaltyReward = "loyalty_reward"
	PromoSeasonalOffer = "seasonal_offer"
)

// Known spend tiers, lowest to highest. Open set as well.
const (
	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
	TierDiamond  = "diamond"
	TierVIP      = "vip"
)

// Promotion is the reward granted when a rule applies.
type Promotion struct {
	ID            string     `json:"id" yaml:"id"`
	Type          string     `json:"type" yaml:"type"`
	Amount        *float64   `json:"amount,omitempty" yaml:"amount,omitempty"`
	Multiplier    *float64   `json:"multiplier,omitempty" yaml:"multiplier,omitempty"`
	DurationHours *float64   `json:"duration_hours,omitempty" yaml:"duration_hours,omitempty"`
	MaxAmount     *float64   `json:"max_amount,omitempty" yaml:"max_amount,omitempty"`
	MinAmount     *float64   `json:"min_amount,omitempty" yaml:"min_amount,omitempty"`
	Currency      string     `json:"currency,omitempty" yaml:"currency,omitempty"`
	Description   string     `json:"description,omitempty" yaml:"description,omitempty"`
	Terms         string     `json:"terms_and_conditions,omitempty" yaml:"terms_and_conditions,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// ValidAt reports whether the promotion can still be granted at the given
// time. Promotions without an expiry are always valid.
func (p *Promotion) ValidAt(now time.Time) bool {
	return p.ExpiresAt == nil || !now.After(*p.ExpiresAt)
}

// Rule is one promotion rule: the conditions a player profile must satisfy
// plus the promotion awarded when they do.
//
// Conditions map profile field names to predicates. Weight, Bucket and Window
// are optional gates layered on top of the conditions.
type Rule struct {
	ID          string               `json:"id" yaml:"id"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Priority    int                  `json:"priority" yaml:"priority"`
	Enabled     bool                 `json:"enabled" yaml:"enabled"`
	Conditions  map[string]Condition `json:"conditions" yaml:"conditions"`
	Promotion   Promotion            `json:"promotion" yaml:"promotion"`
	Weight      *float64             `json:"weight,omitempty" yaml:"weight,omitempty"`
	Bucket      *BucketSpec          `json:"ab_bucket,omitempty" yaml:"ab_bucket,omitempty"`
	Window      *TimeWindow          `json:"time_window,omitempty" yaml:"time_window,omitempty"`
}

// KnownConditionFields is the documented player profile schema. Conditions on
// other fields still evaluate; the loader only warns about them.
var KnownConditionFields = map[string]struct{}{
	"player_id":                {},
	"level":                    {},
	"spend_tier":               {},
	"country":                  {},
	"days_since_last_purchase": {},
	"total_spent":              {},
	"current_balance":          {},
	"registration_date":        {},
}

// UnknownConditionFields lists the condition fields of r that are not part of
// the documented profile schema, sorted for stable diagnostics.
func UnknownConditionFields(r Rule) []string {
	var out []string
	for field := range r.Conditions {
		if _, ok := KnownConditionFields[field]; !ok {
			out = append(out, field)
		}
	}
	sort.Strings(out)
	return out
}
