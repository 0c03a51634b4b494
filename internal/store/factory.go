package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vihabhat/Promotion-rule-engine/internal/db"
)

// Config selects and parameterizes a rule source.
type Config struct {
	Type string // "file", "postgres" or "static"
	Path string // rules document location, for "file"
	DSN  string // database DSN, for "postgres"
}

// NewSource creates a rule source for the given configuration.
// Supported types: "file", "postgres", "static"
func NewSource(ctx context.Context, cfg Config, log zerolog.Logger) (Source, error) {
	switch cfg.Type {
	case "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("file source requires a rules path")
		}
		return NewFileSource(cfg.Path, log), nil
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		return NewPostgresSource(pool, log), nil
	case "static":
		return NewStaticSource(nil), nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s", cfg.Type)
	}
}
