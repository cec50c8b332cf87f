package signal

import "testing"

func TestRateLimiterPerParticipant(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	for i := 0; i < 2; i++ {
		if !rl.Allow("a") {
			t.Fatalf("frame %d denied within burst", i)
		}
	}
	if rl.Allow("a") {
		t.Fatal("frame over burst allowed")
	}
	if !rl.Allow("b") {
		t.Fatal("other participant throttled")
	}
	rl.Forget("a")
	if !rl.Allow("a") {
		t.Fatal("forgotten participant still throttled")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 1000; i++ {
		if !rl.Allow("a") {
			t.Fatal("disabled limiter denied a frame")
		}
	}
}
