// Package snapshot holds the in-memory view of all experiments the server
// evaluates against. A snapshot is immutable once built and swapped in
// atomically, so evaluation never takes a lock: each write to the store
// rebuilds the whole view, constructs every experiment's variant partition
// once, and replaces the pointer.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/expdeck/expdeck/internal/store"
	"github.com/expdeck/expdeck/internal/variantset"
)

// ExperimentView is the evaluation-ready form of a stored experiment. Set
// is the variant partition built from Variants and NumBuckets at snapshot
// time; experiments with invalid variant configuration never make it into
// a snapshot.
type ExperimentView struct {
	Key         string               `json:"key"`
	Description string               `json:"description"`
	Owner       string               `json:"owner"`
	Enabled     bool                 `json:"enabled"`
	Variants    []variantset.Variant `json:"variants"`
	NumBuckets  int                  `json:"numBuckets"`
	BucketBy    string               `json:"bucketBy"`
	Expression  *string              `json:"expression,omitempty"`
	Overrides   map[string]string    `json:"overrides,omitempty"`
	StartsAt    *time.Time           `json:"startsAt,omitempty"`
	EndsAt      *time.Time           `json:"endsAt,omitempty"`
	Env         string               `json:"env"`
	UpdatedAt   time.Time            `json:"updatedAt"`

	Set *variantset.VariantSet `json:"-"`
}

// Snapshot is an immutable view of all experiments for one environment.
type Snapshot struct {
	ETag        string                    `json:"etag"`
	Experiments map[string]ExperimentView `json:"experiments"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
}

var current atomic.Pointer[Snapshot]

// Load returns the current snapshot. Before the first Update it returns an
// empty snapshot rather than nil.
func Load() *Snapshot {
	if s := current.Load(); s != nil {
		return s
	}
	return &Snapshot{ETag: "", Experiments: map[string]ExperimentView{}, UpdatedAt: time.Now().UTC()}
}

// Update atomically replaces the current snapshot.
func Update(s *Snapshot) {
	current.Store(s)
}

// BuildFromExperiments converts stored experiments into an evaluation-ready
// snapshot. Experiments whose variant configuration fails validation are
// logged and dropped; a misconfigured experiment must never silently
// assign subjects.
func BuildFromExperiments(experiments []store.Experiment) *Snapshot {
	views := make(map[string]ExperimentView, len(experiments))
	for _, exp := range experiments {
		numBuckets := int(exp.NumBuckets)
		var opts []variantset.Option
		if numBuckets > 0 {
			opts = append(opts, variantset.WithNumBuckets(numBuckets))
		} else {
			numBuckets = variantset.DefaultNumBuckets
		}

		set, err := variantset.New(exp.Variants, opts...)
		if err != nil {
			log.Printf("snapshot: dropping experiment %q: %v", exp.Key, err)
			continue
		}

		bucketBy := exp.BucketBy
		if bucketBy == "" {
			bucketBy = "id"
		}

		views[exp.Key] = ExperimentView{
			Key:         exp.Key,
			Description: exp.Description,
			Owner:       exp.Owner,
			Enabled:     exp.Enabled,
			Variants:    exp.Variants,
			NumBuckets:  numBuckets,
			BucketBy:    bucketBy,
			Expression:  exp.Expression,
			Overrides:   exp.Overrides,
			StartsAt:    exp.StartsAt,
			EndsAt:      exp.EndsAt,
			Env:         exp.Env,
			UpdatedAt:   exp.UpdatedAt,
			Set:         set,
		}
	}

	blob, _ := json.Marshal(views)
	sum := sha256.Sum256(blob)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return &Snapshot{ETag: etag, Experiments: views, UpdatedAt: time.Now().UTC()}
}
