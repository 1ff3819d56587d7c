package payment

import (
	"testing"
	"time"
)

func TestWindowBucket(t *testing.T) {
	window := time.Minute
	now := time.Unix(1700000030, 0) // 30s into a minute bucket

	bucket, reset := windowBucket(now, window)
	if bucket != 1700000030/60 {
		t.Fatalf("unexpected bucket %d", bucket)
	}
	if !reset.Equal(time.Unix((bucket+1)*60, 0)) {
		t.Fatalf("unexpected reset time %v", reset)
	}
	if !reset.After(now) {
		t.Fatalf("reset %v must be after now %v", reset, now)
	}

	// Same window maps to the same bucket, the next window rolls over.
	sameBucket, _ := windowBucket(now.Add(29*time.Second), window)
	if sameBucket != bucket {
		t.Fatalf("expected same bucket, got %d and %d", bucket, sameBucket)
	}
	nextBucket, _ := windowBucket(now.Add(30*time.Second), window)
	if nextBucket != bucket+1 {
		t.Fatalf("expected next bucket %d, got %d", bucket+1, nextBucket)
	}
}

func TestRateLimitKey(t *testing.T) {
	key := rateLimitKey("payment_webhook", "192.0.2.10", 28333333)
	want := "ratelimit:payment_webhook:192.0.2.10:28333333"
	if key != want {
		t.Fatalf("rateLimitKey = %q, want %q", key, want)
	}
}
