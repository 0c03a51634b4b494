package cli

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Attribute pools for the synthetic player generator.
var (
	generatorTiers = []string{"bronze", "silver", "gold", "platinum", "diamond", "vip"}

	generatorCountries = []string{
		"US", "UK", "CA", "AU", "DE", "FR", "ES", "IT", "NL", "SE",
		"IN", "CN", "JP", "KR", "BR", "MX", "ZA", "RU", "AR", "TR", "ID",
	}
)

// GeneratePlayers returns n synthetic player profiles: random level 1-50,
// spend tier, country, purchase recency up to 60 days, total spend up to
// 20000, balance up to 5000 and a registration date within the last five
// years. Identifiers are fresh UUIDs, so two runs never collide even with
// the same rng.
func GeneratePlayers(n int, rng *rand.Rand, now time.Time) []map[string]any {
	players := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		players = append(players, map[string]any{
			"player_id":                uuid.NewString(),
			"level":                    rng.Intn(50) + 1,
			"spend_tier":               generatorTiers[rng.Intn(len(generatorTiers))],
			"days_since_last_purchase": rng.Intn(61),
			"total_spent":              round2(10 + rng.Float64()*(20000-10)),
			"current_balance":          round2(rng.Float64() * 5000),
			"country":                  generatorCountries[rng.Intn(len(generatorCountries))],
			"registration_date":        now.AddDate(0, 0, -rng.Intn(5*365+1)).Format("2006-01-02"),
		})
	}
	return players
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
