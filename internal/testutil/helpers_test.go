package testutil

import (
	"net/http"
	"testing"

	"github.com/expdeck/expdeck/internal/store"
	"github.com/expdeck/expdeck/internal/variantset"
)

func TestNewTestServer(t *testing.T) {
	server, memStore := NewTestServer(t, "prod", "admin-key", "salt")
	if server == nil || memStore == nil {
		t.Fatal("Expected server and store to be created")
	}

	req := HTTPRequest{Method: http.MethodGet, Path: "/healthz"}
	rr := req.Do(t, server.Router())
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 from healthz, got %d", rr.Code)
	}
}

func TestSeedExperiments(t *testing.T) {
	_, memStore := NewTestServer(t, "prod", "admin-key", "salt")

	half := 0.5
	seeds := []store.UpsertParams{
		{
			Key: "seeded_a",
			Variants: []variantset.Variant{
				{Name: "control", Size: &half},
				{Name: "treatment", Size: &half},
			},
			NumBuckets: 1000,
			Env:        "prod",
		},
		{
			Key: "seeded_b",
			Variants: []variantset.Variant{
				{Name: "control", Size: &half},
				{Name: "treatment", Size: &half},
			},
			NumBuckets: 1000,
			Env:        "prod",
		},
	}

	if err := SeedExperiments(t.Context(), memStore, seeds); err != nil {
		t.Fatalf("SeedExperiments failed: %v", err)
	}

	all, err := memStore.GetAllExperiments(t.Context(), "prod")
	if err != nil {
		t.Fatalf("GetAllExperiments failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 seeded experiments, got %d", len(all))
	}
}

func TestHTTPRequest_Headers(t *testing.T) {
	server, _ := NewTestServer(t, "prod", "admin-key", "salt")

	req := HTTPRequest{
		Method:  http.MethodDelete,
		Path:    "/v1/experiments/anything",
		Headers: map[string]string{"Authorization": "Bearer admin-key"},
	}
	rr := req.Do(t, server.Router())
	if rr.Code == http.StatusUnauthorized {
		t.Error("Expected auth header to be forwarded")
	}
}
