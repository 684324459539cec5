package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/expdeck/expdeck/internal/evaluation"
	"github.com/expdeck/expdeck/internal/snapshot"
	"github.com/expdeck/expdeck/internal/telemetry"
)

type evaluateRequest struct {
	Subject evaluation.Context `json:"subject"`
	Keys    []string           `json:"keys,omitempty"` // optional filter; empty evaluates all
}

type evaluateResponse struct {
	Results     []evaluation.Result `json:"results"`
	ETag        string              `json:"etag"`
	EvaluatedAt time.Time           `json:"evaluatedAt"`
}

// handleEvaluate evaluates experiments for one subject against the current
// snapshot. Evaluation is read-only and lock-free; concurrent requests
// never interact.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequestError(w, r, ErrCodeInvalidJSON, "invalid JSON")
		return
	}

	snap := snapshot.Load()
	results := evaluation.EvaluateAll(snap.Experiments, req.Subject, s.salt, req.Keys)
	for _, res := range results {
		telemetry.RecordEvaluation(res.Key, res.Variant)
	}

	writeJSON(w, http.StatusOK, evaluateResponse{
		Results:     results,
		ETag:        snap.ETag,
		EvaluatedAt: time.Now().UTC(),
	})
}
