package ratelimit

import "testing"

func TestUseGeminiCap(t *testing.T) {
	rl := NewAIRateLimiter(2)

	for i := 0; i < 2; i++ {
		if !rl.CanUseGemini() {
			t.Fatalf("blocked at request %d of 2", i+1)
		}
		if err := rl.UseGemini(); err != nil {
			t.Fatal(err)
		}
	}
	if rl.CanUseGemini() {
		t.Error("cap reached but CanUseGemini still true")
	}
	if err := rl.UseGemini(); err == nil {
		t.Error("request over the cap accepted")
	}
}

func TestUnlimitedWhenZero(t *testing.T) {
	rl := NewAIRateLimiter(0)
	for i := 0; i < 200; i++ {
		if err := rl.UseGemini(); err != nil {
			t.Fatalf("unlimited limiter refused at %d: %v", i, err)
		}
	}
}

func TestCacheHitRate(t *testing.T) {
	rl := NewAIRateLimiter(10)
	if rl.GetCacheHitRate() != 0 {
		t.Error("hit rate nonzero before any traffic")
	}

	rl.UseGemini()       // one miss
	rl.RecordCacheHit(50)
	rl.RecordCacheHit(50)
	rl.UseGemini() // another miss

	if got := rl.GetCacheHitRate(); got != 50 {
		t.Errorf("hit rate = %v, want 50", got)
	}

	stats := rl.GetStats()
	if stats["tokens_saved"].(int) != 100 {
		t.Errorf("tokens_saved = %v", stats["tokens_saved"])
	}
	if stats["gemini_used"].(int) != 2 {
		t.Errorf("gemini_used = %v", stats["gemini_used"])
	}
}
