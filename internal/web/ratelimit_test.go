package web

import (
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := newRateLimiter(3)
	defer rl.close()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.allow("a") {
			t.Fatalf("request %d denied, want allowed", i+1)
		}
	}
	if rl.allow("a") {
		t.Error("fourth request allowed, want denied")
	}
	if !rl.allow("b") {
		t.Error("other key denied, want allowed")
	}

	now = now.Add(20 * time.Second)
	if !rl.allow("a") {
		t.Error("request after refill denied, want allowed")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := newRateLimiter(10)
	defer rl.close()

	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	rl.now = func() time.Time { return now }

	rl.allow("idle")
	now = start.Add(time.Minute)
	rl.allow("active")

	rl.cleanup(start.Add(150 * time.Second))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.visitors["idle"]; ok {
		t.Error("idle visitor kept, want removed")
	}
	if _, ok := rl.visitors["active"]; !ok {
		t.Error("active visitor removed, want kept")
	}
}

func TestRateLimiterCloseIsIdempotent(t *testing.T) {
	rl := newRateLimiter(1)
	rl.close()
	rl.close()
}
