// Package variantset implements deterministic two-variant partitioning of a
// bucket range. A VariantSet maps bucket indices (produced upstream by
// hashing a subject ID) to one of two named variants, conventionally
// "control" and "treatment", according to configured fractional sizes.
//
// The allocation is anchored at both ends of the bucket range: the first
// variant grows from bucket 0 upward, the second grows from the top bucket
// downward, and the middle band stays unassigned. Resizing a variant only
// moves the boundary at that variant's own edge, so growing a rollout from
// 10% to 20% adds subjects without reshuffling anyone already assigned.
package variantset

import (
	"errors"
	"fmt"
)

// DefaultNumBuckets is the bucket range size used when none is configured.
// 1000 buckets gives 0.1% granularity for variant sizes.
const DefaultNumBuckets = 1000

// Configuration errors returned by New. Each is wrapped in a *ConfigError
// naming the offending field; match with errors.Is.
var (
	ErrNoVariants   = errors.New("no variants provided")
	ErrVariantCount = errors.New("expected exactly one control and one treatment variant")
	ErrVariantName  = errors.New("variant names must be non-empty and distinct")
	ErrMissingSize  = errors.New("variant size not provided")
	ErrSizeSum      = errors.New("sum of variant sizes must be between 0 and 1")
	ErrNumBuckets   = errors.New("number of buckets must be positive")
)

// ConfigError describes a rejected VariantSet configuration.
type ConfigError struct {
	Field string // configuration field that failed validation
	Err   error  // sentinel kind, e.g. ErrSizeSum
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("variantset: invalid config [%s]: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Variant is one of the two outcomes of a VariantSet. Order matters: the
// first variant is allocated from the bottom of the bucket range, the
// second from the top.
//
// Size is a pointer so that an omitted size (a configuration error) is
// distinguishable from an explicit 0.0 (a legal variant that wins no
// buckets).
type Variant struct {
	Name string   `json:"name"`
	Size *float64 `json:"size"`
}

// Option configures optional VariantSet parameters.
type Option func(*VariantSet)

// WithNumBuckets overrides the bucket range size. Values <= 0 are rejected
// by New.
func WithNumBuckets(n int) Option {
	return func(s *VariantSet) { s.numBuckets = n }
}

// VariantSet is an immutable two-variant partition of the bucket range
// [0, NumBuckets). Once built it holds no mutable state, so concurrent
// queries need no synchronization.
type VariantSet struct {
	variants   [2]Variant
	numBuckets int
}

// New validates the variant pair and builds a VariantSet. The rules match
// what a two-treatment experiment needs:
//
//   - variants must contain exactly two entries
//   - both names must be non-empty and distinct
//   - both sizes must be declared
//   - the sizes must sum to a value in [0, 1]
//   - the bucket count must be positive
//
// A sum below 1 is legal: the remaining buckets form an unassigned band
// and Choose reports no assignment for them. A sum of exactly 0 is also
// legal and yields a set where no bucket is ever assigned.
func New(variants []Variant, opts ...Option) (*VariantSet, error) {
	set := &VariantSet{numBuckets: DefaultNumBuckets}
	for _, opt := range opts {
		opt(set)
	}

	if len(variants) == 0 {
		return nil, &ConfigError{Field: "variants", Err: ErrNoVariants}
	}
	if len(variants) != 2 {
		return nil, &ConfigError{Field: "variants", Err: ErrVariantCount}
	}
	if variants[0].Name == "" || variants[1].Name == "" || variants[0].Name == variants[1].Name {
		return nil, &ConfigError{Field: "variants.name", Err: ErrVariantName}
	}
	if variants[0].Size == nil || variants[1].Size == nil {
		return nil, &ConfigError{Field: "variants.size", Err: ErrMissingSize}
	}
	if total := *variants[0].Size + *variants[1].Size; total < 0.0 || total > 1.0 {
		return nil, &ConfigError{Field: "variants.size", Err: ErrSizeSum}
	}
	if set.numBuckets <= 0 {
		return nil, &ConfigError{Field: "numBuckets", Err: ErrNumBuckets}
	}

	set.variants[0] = variants[0]
	set.variants[1] = variants[1]
	return set, nil
}

// Contains reports whether name matches either configured variant name.
// Membership is independent of size: a variant with size 0 is still part
// of the set.
func (s *VariantSet) Contains(name string) bool {
	return s.variants[0].Name == name || s.variants[1].Name == name
}

// Choose deterministically maps a bucket index to a variant name. The
// second return value is false when the bucket falls in the unassigned
// middle band.
//
// The first variant owns buckets [0, floor(size0*numBuckets)); the second
// owns [numBuckets-floor(size1*numBuckets), numBuckets). Widths truncate,
// never round up, so a fractional bucket is left unassigned rather than
// over-allocated.
//
// Choose performs no range check on bucket: the caller's hash step owns
// range correctness, and the arithmetic is total over any integer.
func (s *VariantSet) Choose(bucket int) (string, bool) {
	if bucket < int(*s.variants[0].Size*float64(s.numBuckets)) {
		return s.variants[0].Name, true
	}
	if bucket >= s.numBuckets-int(*s.variants[1].Size*float64(s.numBuckets)) {
		return s.variants[1].Name, true
	}
	return "", false
}

// Variants returns the configured variant pair in allocation order.
func (s *VariantSet) Variants() [2]Variant { return s.variants }

// NumBuckets returns the size of the bucket range.
func (s *VariantSet) NumBuckets() int { return s.numBuckets }
