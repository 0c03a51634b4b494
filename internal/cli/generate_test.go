package cli

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGeneratePlayers(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(42))

	players := GeneratePlayers(200, rng, now)
	if len(players) != 200 {
		t.Fatalf("Expected 200 players, got %d", len(players))
	}

	tiers := make(map[string]bool, len(generatorTiers))
	for _, tier := range generatorTiers {
		tiers[tier] = true
	}
	countries := make(map[string]bool, len(generatorCountries))
	for _, c := range generatorCountries {
		countries[c] = true
	}
	oldest := now.AddDate(0, 0, -(5*365 + 1))

	for i, p := range players {
		id, ok := p["player_id"].(string)
		if !ok {
			t.Fatalf("Player %d: player_id is %T, want string", i, p["player_id"])
		}
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("Player %d: player_id %q is not a UUID: %v", i, id, err)
		}

		level := p["level"].(int)
		if level < 1 || level > 50 {
			t.Errorf("Player %d: level %d out of range [1,50]", i, level)
		}

		if !tiers[p["spend_tier"].(string)] {
			t.Errorf("Player %d: unknown spend_tier %v", i, p["spend_tier"])
		}
		if !countries[p["country"].(string)] {
			t.Errorf("Player %d: unknown country %v", i, p["country"])
		}

		days := p["days_since_last_purchase"].(int)
		if days < 0 || days > 60 {
			t.Errorf("Player %d: days_since_last_purchase %d out of range [0,60]", i, days)
		}

		spent := p["total_spent"].(float64)
		if spent < 10 || spent > 20000 {
			t.Errorf("Player %d: total_spent %f out of range [10,20000]", i, spent)
		}
		if math.Abs(spent*100-math.Round(spent*100)) > 1e-9 {
			t.Errorf("Player %d: total_spent %f not rounded to 2 decimals", i, spent)
		}

		balance := p["current_balance"].(float64)
		if balance < 0 || balance > 5000 {
			t.Errorf("Player %d: current_balance %f out of range [0,5000]", i, balance)
		}

		reg, err := time.Parse("2006-01-02", p["registration_date"].(string))
		if err != nil {
			t.Errorf("Player %d: bad registration_date: %v", i, err)
			continue
		}
		if reg.After(now) || reg.Before(oldest) {
			t.Errorf("Player %d: registration_date %s outside the last 5 years", i, reg.Format("2006-01-02"))
		}
	}
}

func TestGeneratePlayers_DeterministicWithSeed(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	a := GeneratePlayers(20, rand.New(rand.NewSource(7)), now)
	b := GeneratePlayers(20, rand.New(rand.NewSource(7)), now)

	for i := range a {
		// IDs are always fresh; everything drawn from the rng must repeat.
		for _, field := range []string{"level", "spend_tier", "days_since_last_purchase", "total_spent", "current_balance", "country", "registration_date"} {
			if a[i][field] != b[i][field] {
				t.Errorf("Player %d: field %s differs between seeded runs: %v vs %v", i, field, a[i][field], b[i][field])
			}
		}
		if a[i]["player_id"] == b[i]["player_id"] {
			t.Errorf("Player %d: expected distinct ids across runs", i)
		}
	}
}
