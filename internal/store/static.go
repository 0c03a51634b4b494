package store

import (
	"context"
	"sync"

	"github.com/vihabhat/Promotion-rule-engine/internal/rules"
)

// StaticSource serves a fixed rule set from memory. It uses an RWMutex for
// thread-safe concurrent access and is suitable for tests and for promoctl,
// which builds its rules before wiring a matcher.
type StaticSource struct {
	mu sync.RWMutex
	rs []rules.Rule
}

// NewStaticSource creates a source serving rs.
func NewStaticSource(rs []rules.Rule) *StaticSource {
	s := &StaticSource{}
	s.SetRules(rs)
	return s
}

// Load returns a copy of the current rule set.
func (s *StaticSource) Load(ctx context.Context) (*LoadResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]rules.Rule, len(s.rs))
	copy(out, s.rs)
	return &LoadResult{Rules: out}, nil
}

// SetRules replaces the rule set served by subsequent Loads.
func (s *StaticSource) SetRules(rs []rules.Rule) {
	own := make([]rules.Rule, len(rs))
	copy(own, rs)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rs = own
}

// Info reports a synthetic in-memory location.
func (s *StaticSource) Info(ctx context.Context) (SourceInfo, error) {
	return SourceInfo{Exists: true, Path: "static://", Readable: true}, nil
}

// Close is a no-op for StaticSource as there are no resources to release.
func (s *StaticSource) Close() error {
	return nil
}
