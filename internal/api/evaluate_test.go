package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
)

func seedFullSplit(t *testing.T, srv *Server) {
	t.Helper()
	body := `{
		"key": "eval_test",
		"enabled": true,
		"variants": [
			{"name": "control", "size": 0.5},
			{"name": "treatment", "size": 0.5}
		],
		"numBuckets": 1000
	}`
	rr := doRequest(t, srv.Router(), http.MethodPost, "/v1/experiments", body, adminHeaders())
	if rr.Code != http.StatusOK {
		t.Fatalf("seed upsert failed: %d: %s", rr.Code, rr.Body.String())
	}
}

func TestEvaluate_AssignsVariant(t *testing.T) {
	srv, _ := newTestServer()
	seedFullSplit(t, srv)

	body := `{"subject": {"id": "user-123"}}`
	rr := doRequest(t, srv.Router(), http.MethodPost, "/v1/evaluate", body, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp evaluateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.ETag == "" {
		t.Error("Expected snapshot ETag in response")
	}

	var found bool
	for _, res := range resp.Results {
		if res.Key == "eval_test" {
			found = true
			if !res.Assigned {
				t.Error("Expected assignment under a 50/50 split")
			}
			if res.Variant != "control" && res.Variant != "treatment" {
				t.Errorf("Unexpected variant %q", res.Variant)
			}
		}
	}
	if !found {
		t.Error("Expected eval_test in results")
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	srv, _ := newTestServer()
	seedFullSplit(t, srv)
	router := srv.Router()

	body := `{"subject": {"id": "user-123"}, "keys": ["eval_test"]}`

	variants := map[string]bool{}
	for i := 0; i < 5; i++ {
		rr := doRequest(t, router, http.MethodPost, "/v1/evaluate", body, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rr.Code)
		}
		var resp evaluateResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response: %v", err)
		}
		if len(resp.Results) != 1 {
			t.Fatalf("Expected 1 result, got %d", len(resp.Results))
		}
		variants[fmt.Sprintf("%s/%v", resp.Results[0].Variant, resp.Results[0].Assigned)] = true
	}

	if len(variants) != 1 {
		t.Errorf("Evaluation not deterministic across requests: %v", variants)
	}
}

func TestEvaluate_KeysFilter(t *testing.T) {
	srv, _ := newTestServer()
	seedFullSplit(t, srv)

	body := `{"subject": {"id": "user-123"}, "keys": ["missing_key"]}`
	rr := doRequest(t, srv.Router(), http.MethodPost, "/v1/evaluate", body, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var resp evaluateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("Expected unknown keys to be skipped, got %d results", len(resp.Results))
	}
}

func TestEvaluate_AnonymousSubject(t *testing.T) {
	srv, _ := newTestServer()
	seedFullSplit(t, srv)

	body := `{"subject": {"id": ""}, "keys": ["eval_test"]}`
	rr := doRequest(t, srv.Router(), http.MethodPost, "/v1/evaluate", body, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var resp evaluateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Assigned {
		t.Errorf("Expected no assignment for anonymous subject, got %+v", resp.Results)
	}
}

func TestEvaluate_InvalidJSON(t *testing.T) {
	srv, _ := newTestServer()
	rr := doRequest(t, srv.Router(), http.MethodPost, "/v1/evaluate", "{broken", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid JSON, got %d", rr.Code)
	}
}
