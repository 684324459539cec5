// Package bucketing maps subject identifiers onto the discrete bucket
// range consumed by variant partitioning. It uses xxHash so that the same
// subject, experiment and salt always land in the same bucket, and so that
// buckets are evenly distributed across subjects.
package bucketing

import (
	"github.com/cespare/xxhash/v2"
)

// Bucket returns a deterministic bucket in [0, numBuckets) for the given
// subject and experiment. The salt decorrelates bucket assignments across
// deployments; changing it reshuffles every subject.
//
// Returns -1 when subjectID is empty (no subject context) or numBuckets is
// not positive.
func Bucket(subjectID, experimentKey, salt string, numBuckets int) int {
	if subjectID == "" || numBuckets <= 0 {
		return -1
	}
	// Delimited so "ab"+"c" and "a"+"bc" hash differently.
	key := subjectID + ":" + experimentKey + ":" + salt
	return int(xxhash.Sum64String(key) % uint64(numBuckets))
}
