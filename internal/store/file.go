package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/vihabhat/Promotion-rule-engine/internal/rules"
)

// document is the on-disk shape of a rules file.
type document struct {
	Rules []any `yaml:"rules"`
}

// FileSource loads rules from a YAML document on disk. It remembers the
// mtime and content fingerprint of the last successful load so watchers can
// skip no-op reloads.
type FileSource struct {
	path string
	log  zerolog.Logger

	mu          sync.Mutex
	modTime     time.Time
	fingerprint uint64
}

// NewFileSource returns a source reading the YAML document at path.
func NewFileSource(path string, log zerolog.Logger) *FileSource {
	return &FileSource{path: path, log: log}
}

// Load reads and validates the whole document. An empty document is a valid
// empty rule set; rules that fail validation are dropped with a logged
// diagnostic and the rest still load.
func (f *FileSource) Load(ctx context.Context) (*LoadResult, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, f.path)
		}
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, f.path, err)
	}

	if len(doc.Rules) == 0 {
		f.log.Warn().Str("path", f.path).Msg("rules document is empty, serving an empty set")
		f.remember(data)
		return &LoadResult{Rules: []rules.Rule{}}, nil
	}

	rs, dropped := rules.BuildAll(doc.Rules)
	for _, derr := range dropped {
		f.log.Error().Err(derr).Str("path", f.path).Msg("dropping invalid rule")
	}
	for _, r := range rs {
		if unknown := rules.UnknownConditionFields(r); len(unknown) > 0 {
			f.log.Warn().Str("rule_id", r.ID).Strs("fields", unknown).
				Msg("rule conditions reference unknown profile fields")
		}
	}

	f.remember(data)
	return &LoadResult{Rules: rs, Dropped: dropped}, nil
}

// Changed reports whether the file on disk differs from the last successful
// load, checking mtime first and the content fingerprint second. A stat or
// read failure counts as changed so the next Load surfaces the real error.
func (f *FileSource) Changed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	fi, err := os.Stat(f.path)
	if err != nil {
		return true
	}
	if fi.ModTime().Equal(f.modTime) {
		return false
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return true
	}
	return xxhash.Sum64(data) != f.fingerprint
}

// Info reports on-disk diagnostics for the rules document.
func (f *FileSource) Info(ctx context.Context) (SourceInfo, error) {
	info := SourceInfo{Path: f.path}
	fi, err := os.Stat(f.path)
	if err != nil {
		return info, nil
	}
	info.Exists = true
	info.SizeBytes = fi.Size()
	info.ModTime = fi.ModTime()
	if file, err := os.Open(f.path); err == nil {
		info.Readable = true
		file.Close()
	}
	return info, nil
}

// Close is a no-op for FileSource.
func (f *FileSource) Close() error {
	return nil
}

// Path returns the document location.
func (f *FileSource) Path() string {
	return f.path
}

func (f *FileSource) remember(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fingerprint = xxhash.Sum64(data)
	if fi, err := os.Stat(f.path); err == nil {
		f.modTime = fi.ModTime()
	}
}
