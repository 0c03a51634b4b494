package engine

// Player is a raw player profile as decoded from a request body or dataset.
type Player map[string]any

// IDField is the profile key identifying a player.
const IDField = "player_id"

// numericFields are normalized to float64 before any condition runs.
var numericFields = []string{"level", "total_spent", "days_since_last_purchase"}

// ID returns the player identifier when present as a non-empty string.
func (p Player) ID() (string, bool) {
	id, ok := p[IDField].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Field returns the named profile value.
func (p Player) Field(name string) (any, bool) {
	v, ok := p[name]
	return v, ok
}

// normalize returns a shallow copy with the numeric profile fields coerced
// to float64. Unparseable values become 0; absent fields stay absent so
// conditions on them keep failing. The caller's map is never mutated.
func (p Player) normalize() Player {
	out := make(Player, len(p))
	for k, v := range p {
		out[k] = v
	}
	for _, field := range numericFields {
		v, ok := p[field]
		if !ok {
			continue
		}
		f, ok := parseNumeric(v)
		if !ok {
			f = 0
		}
		out[field] = f
	}
	return out
}
