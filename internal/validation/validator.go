// Package validation provides request-level guards for player profiles.
//
// Semantic rule validation lives in internal/rules; this package only bounds
// what the API will accept before evaluation.
package validation

import (
	"fmt"
	"unicode/utf8"
)

const (
	// MaxPlayerIDLength is the maximum length for player identifiers
	MaxPlayerIDLength = 128
	// MaxProfileFields is the maximum number of fields in a player profile
	MaxProfileFields = 100
)

// ValidationResult holds the result of validation
type ValidationResult struct {
	Valid  bool
	Errors map[string]string
}

// NewValidationResult creates a new validation result
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		Valid:  true,
		Errors: make(map[string]string),
	}
}

// AddError adds a field error and marks the result as invalid
func (v *ValidationResult) AddError(field, message string) {
	v.Valid = false
	v.Errors[field] = message
}

// Merge combines another validation result into this one
func (v *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	for field, message := range other.Errors {
		v.AddError(field, message)
	}
}

// ValidatePlayer bounds a player profile before evaluation. Presence of the
// identifier is NOT checked here; the engine reports that as its own error.
func ValidatePlayer(profile map[string]any) *ValidationResult {
	result := NewValidationResult()

	if len(profile) > MaxProfileFields {
		result.AddError("profile", fmt.Sprintf("Profile must not exceed %d fields", MaxProfileFields))
	}
	if id, ok := profile["player_id"].(string); ok {
		result.Merge(ValidatePlayerID(id))
	}

	return result
}

// ValidatePlayerID bounds a player identifier
func ValidatePlayerID(id string) *ValidationResult {
	result := NewValidationResult()

	if !utf8.ValidString(id) {
		result.AddError("player_id", "Player ID must be valid UTF-8")
		return result
	}

	if utf8.RuneCountInString(id) > MaxPlayerIDLength {
		result.AddError("player_id", fmt.Sprintf("Player ID must not exceed %d characters", MaxPlayerIDLength))
		return result
	}

	return result
}
