// Package evaluation provides server-side experiment evaluation. It
// combines eligibility targeting, subject bucketing and the variant
// partition into a single pure decision: which variant, if any, a subject
// is assigned to.
//
// All functions are pure; the only inputs are the experiment view, the
// subject context, the bucketing salt and the evaluation time. The same
// inputs always produce the same assignment.
package evaluation

import (
	"time"

	"github.com/expdeck/expdeck/internal/bucketing"
	"github.com/expdeck/expdeck/internal/snapshot"
	"github.com/expdeck/expdeck/internal/targeting"
)

// Context represents the subject being evaluated.
type Context struct {
	SubjectID  string         `json:"id"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Result is the evaluation outcome for a single experiment. Assigned is
// false when the subject fell in the unallocated band, was ineligible, or
// the experiment is not running.
type Result struct {
	Key      string `json:"key"`
	Assigned bool   `json:"assigned"`
	Variant  string `json:"variant,omitempty"`
}

// EvaluateExperiment evaluates one experiment for a subject at the given
// time.
//
// Decision order, each step able to short-circuit to "no assignment":
//  1. experiment must be enabled
//  2. now must fall inside the schedule window (StartsAt/EndsAt)
//  3. the targeting expression, if any, must match the subject
//  4. a per-subject override, if present and naming a configured variant,
//     wins without bucketing
//  5. otherwise the bucketed subject is mapped through the variant
//     partition; the middle band yields no assignment
func EvaluateExperiment(exp snapshot.ExperimentView, ctx Context, salt string, now time.Time) Result {
	result := Result{Key: exp.Key}

	if !exp.Enabled || exp.Set == nil {
		return result
	}
	if exp.StartsAt != nil && now.Before(*exp.StartsAt) {
		return result
	}
	if exp.EndsAt != nil && !now.Before(*exp.EndsAt) {
		return result
	}

	if exp.Expression != nil && *exp.Expression != "" {
		match, err := targeting.Evaluate(*exp.Expression, buildSubjectContext(ctx))
		if err != nil || !match {
			return result
		}
	}

	if name, ok := exp.Overrides[ctx.SubjectID]; ok && ctx.SubjectID != "" && exp.Set.Contains(name) {
		result.Assigned = true
		result.Variant = name
		return result
	}

	bucket := bucketing.Bucket(bucketValue(exp.BucketBy, ctx), exp.Key, salt, exp.NumBuckets)
	if bucket < 0 {
		return result
	}

	if name, ok := exp.Set.Choose(bucket); ok {
		result.Assigned = true
		result.Variant = name
	}
	return result
}

// EvaluateAll evaluates experiments for a subject. keys is an optional
// filter; unknown keys are silently skipped. The returned slice is never
// nil.
func EvaluateAll(experiments map[string]snapshot.ExperimentView, ctx Context, salt string, keys []string) []Result {
	now := time.Now().UTC()

	var results []Result
	if len(keys) > 0 {
		results = make([]Result, 0, len(keys))
		for _, key := range keys {
			if exp, exists := experiments[key]; exists {
				results = append(results, EvaluateExperiment(exp, ctx, salt, now))
			}
		}
	} else {
		results = make([]Result, 0, len(experiments))
		for _, exp := range experiments {
			results = append(results, EvaluateExperiment(exp, ctx, salt, now))
		}
	}

	return results
}

// bucketValue picks the subject attribute that gets hashed. The default
// "id" buckets by subject ID; anything else reads a string attribute, so
// experiments can bucket by device, session, account and so on.
func bucketValue(bucketBy string, ctx Context) string {
	if bucketBy == "" || bucketBy == "id" {
		return ctx.SubjectID
	}
	if v, ok := ctx.Attributes[bucketBy].(string); ok {
		return v
	}
	return ""
}

func buildSubjectContext(ctx Context) targeting.SubjectContext {
	subjectCtx := make(targeting.SubjectContext, len(ctx.Attributes)+1)
	if ctx.SubjectID != "" {
		subjectCtx["id"] = ctx.SubjectID
	}
	for k, v := range ctx.Attributes {
		subjectCtx[k] = v
	}
	return subjectCtx
}
