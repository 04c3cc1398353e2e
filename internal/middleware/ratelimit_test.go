package middleware

import (
	"testing"
	"time"
)

func TestRateLimiter_AllowsUpToMax(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    5,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})

	for i := 0; i < 5; i++ {
		if !rl.Allow("test-ip") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiter_BlocksAfterMax(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    3,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})

	for i := 0; i < 3; i++ {
		rl.Allow("test-ip")
	}

	if rl.Allow("test-ip") {
		t.Fatal("4th request should be blocked")
	}
}

func TestRateLimiter_DifferentKeysIndependent(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    2,
		Window: time.Minute,
		KeyFn:  KeyByIP,
	})

	rl.Allow("ip-a")
	rl.Allow("ip-a")

	// ip-a is exhausted
	if rl.Allow("ip-a") {
		t.Fatal("ip-a should be blocked")
	}

	// ip-b should still be allowed
	if !rl.Allow("ip-b") {
		t.Fatal("ip-b should be allowed (independent key)")
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Max:    2,
		Window: 50 * time.Millisecond,
		KeyFn:  KeyByIP,
	})

	rl.Allow("test")
	rl.Allow("test")

	if rl.Allow("test") {
		t.Fatal("should be blocked within window")
	}

	// Wait for window to expire
	time.Sleep(60 * time.Millisecond)

	if !rl.Allow("test") {
		t.Fatal("should be allowed after window reset")
	}
}

func TestRateLimiter_SessionStartConfig(t *testing.T) {
	rl := NewSessionStartRateLimiter()
	for i := 0; i < 10; i++ {
		if !rl.Allow("ip:127.0.0.1") {
			t.Fatalf("session start request %d should be allowed (max 10)", i+1)
		}
	}
	if rl.Allow("ip:127.0.0.1") {
		t.Fatal("11th session start should be blocked")
	}
}

func TestRateLimiter_AttentionConfig(t *testing.T) {
	rl := NewAttentionRateLimiter()
	for i := 0; i < 60; i++ {
		if !rl.Allow("session:abc123") {
			t.Fatalf("attention request %d should be allowed (max 60)", i+1)
		}
	}
	if rl.Allow("session:abc123") {
		t.Fatal("61st attention request should be blocked")
	}
}

func TestRateLimiter_ProgressConfig(t *testing.T) {
	rl := NewProgressRateLimiter()
	for i := 0; i < 120; i++ {
		if !rl.Allow("session:abc123") {
			t.Fatalf("progress request %d should be allowed (max 120)", i+1)
		}
	}
	if rl.Allow("session:abc123") {
		t.Fatal("121st progress request should be blocked")
	}
}

func TestRateLimiter_AccrualConfig(t *testing.T) {
	rl := NewAccrualRateLimiter()
	for i := 0; i < 120; i++ {
		if !rl.Allow("session:abc123") {
			t.Fatalf("accrual request %d should be allowed (max 120)", i+1)
		}
	}
	if rl.Allow("session:abc123") {
		t.Fatal("121st accrual request should be blocked")
	}
}

func TestRateLimiter_StandingConfig(t *testing.T) {
	rl := NewStandingRateLimiter()
	for i := 0; i < 30; i++ {
		if !rl.Allow("session:abc123") {
			t.Fatalf("standing request %d should be allowed (max 30)", i+1)
		}
	}
	if rl.Allow("session:abc123") {
		t.Fatal("31st standing request should be blocked")
	}
}
