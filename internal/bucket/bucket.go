// Package bucket provides deterministic player bucketing for staged
// promotion rollouts. A player's bucket depends only on the player
// identifier, so assignments survive restarts and agree across machines,
// and raising a percentage from 10 to 20 only adds players, never removes.
package bucket

import "crypto/sha256"

// Bucket returns the deterministic bucket (0-99) for the given player.
// The SHA-256 digest of the identifier, read as one big-endian integer,
// is reduced mod 100. Returns -1 for an empty identifier.
func Bucket(playerID string) int {
	if playerID == "" {
		return -1 // Invalid: no player context
	}
	sum := sha256.Sum256([]byte(playerID))
	m := 0
	for _, b := range sum {
		m = (m*256 + int(b)) % 100
	}
	return m
}

// InRollout determines if a player is included in a percentage rollout.
//
// Algorithm:
//  1. Bucket(playerID) → bucket (0-99)
//  2. If bucket < percentage, the player is included
//
// Special cases:
//   - percentage <= 0: always false (nobody is admitted)
//   - percentage >= 100: always true (everybody with an identifier)
//   - playerID == "": always false (no player context means no rollout)
func InRollout(playerID string, percentage int) bool {
	if percentage <= 0 {
		return false
	}
	if playerID == "" {
		return false
	}
	if percentage >= 100 {
		return true
	}
	return Bucket(playerID) < percentage
}
