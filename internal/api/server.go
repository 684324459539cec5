// Package api exposes the HTTP surface of the experiment service: a
// read-only snapshot endpoint, the evaluation endpoint, and admin CRUD on
// experiment configurations.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/expdeck/expdeck/internal/snapshot"
	"github.com/expdeck/expdeck/internal/store"
	"github.com/expdeck/expdeck/internal/targeting"
	"github.com/expdeck/expdeck/internal/telemetry"
	"github.com/expdeck/expdeck/internal/variantset"
)

type Server struct {
	store       store.Store
	env         string
	adminAPIKey string
	salt        string
}

func NewServer(st store.Store, env, adminKey, salt string) *Server {
	return &Server{store: st, env: env, adminAPIKey: adminKey, salt: salt}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))
	r.Use(telemetry.Middleware)
	r.Use(httprate.LimitByIP(100, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// public: experiment snapshot (ETag)
	r.Get("/v1/experiments/snapshot", s.handleSnapshot)

	// public: per-subject evaluation
	r.Post("/v1/evaluate", s.handleEvaluate)

	// admin (protected)
	r.Post("/v1/experiments", s.authAdmin(s.handleUpsertExperiment))
	r.Delete("/v1/experiments/{key}", s.authAdmin(s.handleDeleteExperiment))

	return r
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := snapshot.Load()
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == snap.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", snap.ETag)
	_ = json.NewEncoder(w).Encode(snap)
}

// ---- admin handlers ----

type upsertRequest struct {
	Key         string               `json:"key"`
	Description string               `json:"description"`
	Owner       string               `json:"owner"`
	Enabled     bool                 `json:"enabled"`
	Variants    []variantset.Variant `json:"variants"`
	NumBuckets  int32                `json:"numBuckets"`
	BucketBy    string               `json:"bucketBy"`
	Expression  *string              `json:"expression,omitempty"`
	Overrides   map[string]string    `json:"overrides,omitempty"`
	StartsAt    *time.Time           `json:"startsAt,omitempty"`
	EndsAt      *time.Time           `json:"endsAt,omitempty"`
	Env         *string              `json:"env,omitempty"` // defaults to the server env
}

type upsertResponse struct {
	OK   bool   `json:"ok"`
	ETag string `json:"etag"`
}

func (s *Server) handleUpsertExperiment(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequestError(w, r, ErrCodeInvalidJSON, "invalid JSON")
		return
	}

	env := s.env
	if req.Env != nil && strings.TrimSpace(*req.Env) != "" {
		env = strings.TrimSpace(*req.Env)
	}

	if strings.TrimSpace(req.Key) == "" {
		BadRequestError(w, r, ErrCodeInvalidKey, "key is required")
		return
	}

	// Dry-run the partition construction so a misconfigured variant pair
	// is rejected here, synchronously, instead of being dropped later at
	// snapshot build.
	var opts []variantset.Option
	if req.NumBuckets != 0 {
		opts = append(opts, variantset.WithNumBuckets(int(req.NumBuckets)))
	}
	if _, err := variantset.New(req.Variants, opts...); err != nil {
		var cfgErr *variantset.ConfigError
		if errors.As(err, &cfgErr) {
			ValidationError(w, r, "invalid variant configuration", map[string]string{
				cfgErr.Field: cfgErr.Err.Error(),
			})
			return
		}
		BadRequestError(w, r, ErrCodeInvalidVariants, err.Error())
		return
	}

	if req.Expression != nil && *req.Expression != "" {
		if err := targeting.ValidateExpression(*req.Expression); err != nil {
			BadRequestError(w, r, ErrCodeInvalidExpression, err.Error())
			return
		}
	}

	params := store.UpsertParams{
		Key:         strings.TrimSpace(req.Key),
		Description: req.Description,
		Owner:       req.Owner,
		Enabled:     req.Enabled,
		Variants:    req.Variants,
		NumBuckets:  req.NumBuckets,
		BucketBy:    req.BucketBy,
		Expression:  req.Expression,
		Overrides:   req.Overrides,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Env:         env,
	}
	if err := s.store.UpsertExperiment(r.Context(), params); err != nil {
		InternalError(w, r, "experiment upsert failed")
		return
	}

	if err := s.RebuildSnapshot(r.Context(), env); err != nil {
		InternalError(w, r, "snapshot rebuild failed")
		return
	}

	writeJSON(w, http.StatusOK, upsertResponse{OK: true, ETag: snapshot.Load().ETag})
}

func (s *Server) handleDeleteExperiment(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		BadRequestError(w, r, ErrCodeInvalidKey, "key is required")
		return
	}

	if err := s.store.DeleteExperiment(r.Context(), key, s.env); err != nil {
		InternalError(w, r, "experiment delete failed")
		return
	}
	if err := s.RebuildSnapshot(r.Context(), s.env); err != nil {
		InternalError(w, r, "snapshot rebuild failed")
		return
	}

	writeJSON(w, http.StatusOK, upsertResponse{OK: true, ETag: snapshot.Load().ETag})
}

// RebuildSnapshot loads experiments for env and swaps the atomic snapshot.
func (s *Server) RebuildSnapshot(ctx context.Context, env string) error {
	experiments, err := s.store.GetAllExperiments(ctx, env)
	if err != nil {
		return err
	}
	snap := snapshot.BuildFromExperiments(experiments)
	snapshot.Update(snap)
	telemetry.SnapshotExperiments.Set(float64(len(snap.Experiments)))
	return nil
}

// ---- middleware & helpers ----

func (s *Server) authAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		got := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer"))
		if got == "" {
			UnauthorizedError(w, r, "missing bearer token")
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.adminAPIKey)) != 1 {
			UnauthorizedError(w, r, "invalid bearer token")
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
