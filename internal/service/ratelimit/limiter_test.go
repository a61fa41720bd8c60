package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterBurstAndRefill(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(3, 1)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d should pass", i)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Fatalf("bucket should be empty")
	}
	if !l.Allow("5.6.7.8") {
		t.Fatalf("other keys have their own bucket")
	}

	now = now.Add(time.Second)
	if !l.Allow("1.2.3.4") {
		t.Fatalf("one token should have refilled")
	}
	if l.Allow("1.2.3.4") {
		t.Fatalf("only one token refilled")
	}
}

func TestLimiterEvictsIdleBuckets(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(l.idleTTL + time.Second)
	l.Allow("b")

	l.mu.Lock()
	_, ok := l.m["a"]
	l.mu.Unlock()
	if ok {
		t.Fatalf("idle bucket not evicted")
	}
}
