package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/vihabhat/Promotion-rule-engine/internal/rules"
)

// PostgresSource loads rules from a promo_rules table:
//
//	CREATE TABLE promo_rules (
//	    seq         BIGSERIAL PRIMARY KEY,
//	    id          TEXT UNIQUE NOT NULL,
//	    description TEXT,
//	    priority    INT NOT NULL,
//	    enabled     BOOLEAN NOT NULL DEFAULT TRUE,
//	    conditions  JSONB NOT NULL DEFAULT '{}',
//	    promotion   JSONB NOT NULL,
//	    weight      DOUBLE PRECISION,
//	    ab_bucket   JSONB,
//	    time_window JSONB,
//	    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//
// seq preserves insertion order, which is the rule load order.
type PostgresSource struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPostgresSource creates a PostgreSQL-backed source.
func NewPostgresSource(pool *pgxpool.Pool, log zerolog.Logger) *PostgresSource {
	return &PostgresSource{pool: pool, log: log}
}

const selectRules = `
SELECT id, description, priority, enabled, conditions, promotion, weight, ab_bucket, time_window
FROM promo_rules
ORDER BY seq`

// Load reads every row into the loose map form and funnels it through the
// same validation pipeline as the file source.
func (p *PostgresSource) Load(ctx context.Context) (*LoadResult, error) {
	rows, err := p.pool.Query(ctx, selectRules)
	if err != nil {
		return nil, fmt.Errorf("querying promo_rules: %w", err)
	}
	defer rows.Close()

	var entries []any
	for rows.Next() {
		var (
			id          string
			description *string
			priority    int
			enabled     bool
			conditions  []byte
			promotion   []byte
			weight      *float64
			abBucket    []byte
			timeWindow  []byte
		)
		if err := rows.Scan(&id, &description, &priority, &enabled, &conditions, &promotion, &weight, &abBucket, &timeWindow); err != nil {
			return nil, fmt.Errorf("scanning promo_rules row: %w", err)
		}

		raw := map[string]any{
			"id":       id,
			"priority": priority,
			"enabled":  enabled,
		}
		if description != nil {
			raw["description"] = *description
		}
		if weight != nil {
			raw["weight"] = *weight
		}
		for key, data := range map[string][]byte{
			"conditions":  conditions,
			"promotion":   promotion,
			"ab_bucket":   abBucket,
			"time_window": timeWindow,
		} {
			if err := putJSON(raw, key, data); err != nil {
				return nil, fmt.Errorf("%w: rule %s %s: %v", ErrParse, id, key, err)
			}
		}
		if _, ok := raw["conditions"]; !ok {
			raw["conditions"] = map[string]any{}
		}
		entries = append(entries, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading promo_rules rows: %w", err)
	}

	rs, dropped := rules.BuildAll(entries)
	for _, derr := range dropped {
		p.log.Error().Err(derr).Msg("dropping invalid rule")
	}
	return &LoadResult{Rules: rs, Dropped: dropped}, nil
}

// Info pings the database. The path is a descriptor, never the DSN, so
// credentials cannot leak into diagnostics.
func (p *PostgresSource) Info(ctx context.Context) (SourceInfo, error) {
	info := SourceInfo{Path: "postgres://promo_rules"}
	if err := p.pool.Ping(ctx); err != nil {
		return info, nil
	}
	info.Exists = true
	info.Readable = true
	return info, nil
}

// Close closes the database connection pool.
func (p *PostgresSource) Close() error {
	p.pool.Close()
	return nil
}

// putJSON decodes a JSONB column into the raw map, skipping NULL columns.
func putJSON(raw map[string]any, key string, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	raw[key] = v
	return nil
}
