// Package store loads promotion rules from their backing sources.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/vihabhat/Promotion-rule-engine/internal/rules"
)

var (
	// ErrNotFound means the rules document does not exist at its configured
	// location.
	ErrNotFound = errors.New("rules not found")

	// ErrParse means the rules document exists but cannot be decoded. A
	// parse failure aborts the whole load: no rules come out of a
	// half-parsed document.
	ErrParse = errors.New("rules parse error")
)

// Source defines the interface for loading promotion rules.
// Implementations must be safe for concurrent use.
type Source interface {
	// Load reads and validates the full rule set. Rules that fail
	// validation are dropped and reported in LoadResult.Dropped; a
	// document-level failure returns an error wrapping ErrNotFound or
	// ErrParse and no rules.
	Load(ctx context.Context) (*LoadResult, error)

	// Info reports source-level diagnostics without loading.
	Info(ctx context.Context) (SourceInfo, error)

	// Close releases any resources held by the source.
	// After Close is called, the source should not be used.
	Close() error
}

// LoadResult is the outcome of one successful load: the rules that built,
// in document order, plus a diagnostic for every entry that was dropped.
type LoadResult struct {
	Rules   []rules.Rule
	Dropped []error
}

// SourceInfo describes the backing location of a source.
type SourceInfo struct {
	Exists    bool      `json:"exists"`
	Path      string    `json:"path"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mod_time"`
	Readable  bool      `json:"readable"`
}
