package bucketing

import (
	"strconv"
	"testing"
)

func TestBucket_Deterministic(t *testing.T) {
	b1 := Bucket("user-123", "checkout_test", "salt", 1000)
	b2 := Bucket("user-123", "checkout_test", "salt", 1000)
	if b1 != b2 {
		t.Errorf("Bucket is not deterministic: got %d and %d", b1, b2)
	}
}

func TestBucket_Range(t *testing.T) {
	for i := 0; i < 1000; i++ {
		subject := "user-" + strconv.Itoa(i)
		b := Bucket(subject, "checkout_test", "salt", 1000)
		if b < 0 || b >= 1000 {
			t.Fatalf("Bucket(%s) = %d, out of [0, 1000)", subject, b)
		}
	}
}

func TestBucket_EmptySubject(t *testing.T) {
	if b := Bucket("", "checkout_test", "salt", 1000); b != -1 {
		t.Errorf("Expected -1 for empty subject, got %d", b)
	}
}

func TestBucket_InvalidNumBuckets(t *testing.T) {
	if b := Bucket("user-123", "checkout_test", "salt", 0); b != -1 {
		t.Errorf("Expected -1 for zero buckets, got %d", b)
	}
	if b := Bucket("user-123", "checkout_test", "salt", -5); b != -1 {
		t.Errorf("Expected -1 for negative buckets, got %d", b)
	}
}

func TestBucket_VariesByExperiment(t *testing.T) {
	// The same subject should not get the same bucket for every experiment;
	// check that at least one of a handful of keys differs.
	base := Bucket("user-123", "exp-0", "salt", 1000)
	varied := false
	for i := 1; i < 10; i++ {
		if Bucket("user-123", "exp-"+strconv.Itoa(i), "salt", 1000) != base {
			varied = true
			break
		}
	}
	if !varied {
		t.Error("Bucket does not vary across experiment keys")
	}
}

func TestBucket_Distribution(t *testing.T) {
	// With 10k subjects over 1000 buckets, the low half should hold ~50%.
	const total = 10000
	low := 0
	for i := 0; i < total; i++ {
		if Bucket("user-"+strconv.Itoa(i), "distribution_test", "salt", 1000) < 500 {
			low++
		}
	}
	pct := float64(low) / float64(total) * 100
	if pct < 45 || pct > 55 {
		t.Errorf("Expected ~50%% of subjects below bucket 500, got %.2f%%", pct)
	}
}
