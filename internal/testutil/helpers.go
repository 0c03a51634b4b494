// Package testutil provides helpers shared by HTTP-level tests.
package testutil

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vihabhat/Promotion-rule-engine/internal/api"
	"github.com/vihabhat/Promotion-rule-engine/internal/engine"
	"github.com/vihabhat/Promotion-rule-engine/internal/rules"
	"github.com/vihabhat/Promotion-rule-engine/internal/store"
	"github.com/vihabhat/Promotion-rule-engine/internal/telemetry"
)

// NewTestServer creates a server over a static in-memory source with rs
// published as the serving snapshot.
func NewTestServer(t *testing.T, rs []rules.Rule) (*api.Server, *store.StaticSource) {
	t.Helper()
	src := store.NewStaticSource(rs)
	srv := api.NewServer(engine.New(), src, telemetry.New(), zerolog.Nop(), "test-key", 100)

	res, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("loading static rules: %v", err)
	}
	srv.ApplyLoad(res)
	return srv, src
}

// WriteRulesFile writes a YAML rules document into a fresh temp dir and
// returns its path. The file goes away with the test.
func WriteRulesFile(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing rules file: %v", err)
	}
	return path
}

// HTTPRequest is a helper for making test HTTP requests.
type HTTPRequest struct {
	Method  string
	Path    string
	Body    string
	Headers map[string]string
}

// Do executes the HTTP request and returns the response recorder.
func (r *HTTPRequest) Do(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if r.Body != "" {
		body = bytes.NewBufferString(r.Body)
	}
	req := httptest.NewRequest(r.Method, r.Path, body)
	if r.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}
