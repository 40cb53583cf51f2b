package ratelimit

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// AIRateLimiter caps daily AI narration requests. Counters reset 24h
// after construction or last reset.
type AIRateLimiter struct {
	mu          sync.Mutex
	geminiCount int
	maxGemini   int
	resetTime   time.Time
	tokensSaved int // estimated tokens avoided via caching
	cacheHits   int
	cacheMisses int
}

// NewAIRateLimiter creates a limiter; max 0 means unlimited.
func NewAIRateLimiter(maxGemini int) *AIRateLimiter {
	return &AIRateLimiter{
		maxGemini: maxGemini,
		resetTime: time.Now().Add(24 * time.Hour),
	}
}

// CanUseGemini checks if we can make a Gemini request
func (rl *AIRateLimiter) CanUseGemini() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxGemini > 0 && rl.geminiCount >= rl.maxGemini {
		log.Printf("⚠️ Gemini rate limit reached (%d/%d)", rl.geminiCount, rl.maxGemini)
		return false
	}
	return true
}

// UseGemini increments the counter or fails when the cap is hit.
func (rl *AIRateLimiter) UseGemini() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxGemini > 0 && rl.geminiCount >= rl.maxGemini {
		return fmt.Errorf("gemini rate limit exceeded")
	}

	rl.geminiCount++
	rl.cacheMisses++

	log.Printf("📊 AI Usage: Gemini=%d/%d", rl.geminiCount, rl.maxGemini)
	return nil
}

// RecordCacheHit records a narration served from cache.
func (rl *AIRateLimiter) RecordCacheHit(estimatedTokens int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cacheHits++
	rl.tokensSaved += estimatedTokens

	log.Printf("💰 Cache HIT! Saved ~%d tokens (Total saved: %d, Hit rate: %.1f%%)",
		estimatedTokens, rl.tokensSaved, rl.hitRate())
}

// GetCacheHitRate returns cache hit rate percentage
func (rl *AIRateLimiter) GetCacheHitRate() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.hitRate()
}

func (rl *AIRateLimiter) hitRate() float64 {
	total := rl.cacheHits + rl.cacheMisses
	if total == 0 {
		return 0
	}
	return float64(rl.cacheHits) / float64(total) * 100
}

// GetStats returns current rate limiter statistics
func (rl *AIRateLimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"gemini_used":    rl.geminiCount,
		"gemini_limit":   rl.maxGemini,
		"cache_hits":     rl.cacheHits,
		"cache_misses":   rl.cacheMisses,
		"cache_hit_rate": rl.hitRate(),
		"tokens_saved":   rl.tokensSaved,
		"reset_time":     rl.resetTime,
	}
}

// checkReset resets counters if reset time has passed
func (rl *AIRateLimiter) checkReset() {
	if time.Now().After(rl.resetTime) {
		log.Printf("🔄 Resetting AI rate limiter counters")
		rl.geminiCount = 0
		rl.cacheHits = 0
		rl.cacheMisses = 0
		rl.tokensSaved = 0
		rl.resetTime = time.Now().Add(24 * time.Hour)
	}
}
