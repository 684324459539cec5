package store

import (
	"context"
	"errors"
	"time"

	"github.com/expdeck/expdeck/internal/variantset"
)

// ErrNotFound is returned when an experiment does not exist.
var ErrNotFound = errors.New("experiment not found")

// Store defines the interface for experiment persistence.
// Implementations must be safe for concurrent use.
type Store interface {
	// GetAllExperiments retrieves all experiments for the given environment.
	// Returns an empty slice if none are found.
	GetAllExperiments(ctx context.Context, env string) ([]Experiment, error)

	// GetExperimentByKey retrieves a single experiment by key.
	// Returns ErrNotFound if it does not exist.
	GetExperimentByKey(ctx context.Context, key string) (*Experiment, error)

	// UpsertExperiment creates or updates an experiment.
	UpsertExperiment(ctx context.Context, params UpsertParams) error

	// DeleteExperiment removes an experiment by key and environment.
	// Deleting a missing experiment is not an error (idempotent).
	DeleteExperiment(ctx context.Context, key, env string) error

	// Close releases any resources held by the store.
	Close() error
}

// Experiment is a stored experiment configuration. Variants is the ordered
// control/treatment pair consumed by variantset.New; order decides which
// end of the bucket range each variant occupies.
type Experiment struct {
	Key         string               `json:"key"`
	Description string               `json:"description"`
	Owner       string               `json:"owner"`
	Enabled     bool                 `json:"enabled"`
	Variants    []variantset.Variant `json:"variants"`
	NumBuckets  int32                `json:"numBuckets"`
	BucketBy    string               `json:"bucketBy"`             // subject attribute hashed for bucketing; "id" when empty
	Expression  *string              `json:"expression,omitempty"` // JSON Logic eligibility expression
	Overrides   map[string]string    `json:"overrides,omitempty"`  // subject ID -> pinned variant name
	StartsAt    *time.Time           `json:"startsAt,omitempty"`
	EndsAt      *time.Time           `json:"endsAt,omitempty"`
	Env         string               `json:"env"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// UpsertParams contains the parameters for upserting an experiment.
type UpsertParams struct {
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
	Env         string               `json:"env"`
}
