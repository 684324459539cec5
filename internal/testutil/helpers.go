// Package testutil provides shared helpers for API-level tests.
package testutil

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/expdeck/expdeck/internal/api"
	"github.com/expdeck/expdeck/internal/store"
)

// NewTestServer creates a test server backed by an in-memory store.
func NewTestServer(t *testing.T, env, adminKey, salt string) (*api.Server, *store.MemoryStore) {
	t.Helper()
	memStore := store.NewMemoryStore()
	server := api.NewServer(memStore, env, adminKey, salt)
	return server, memStore
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

// SeedExperiments populates the store with test experiments.
func SeedExperiments(ctx context.Context, st store.Store, experiments []store.UpsertParams) error {
	for _, exp := range experiments {
		if err := st.UpsertExperiment(ctx, exp); err != nil {
			return err
		}
	}
	return nil
}
