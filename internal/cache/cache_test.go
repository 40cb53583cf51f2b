package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New()
	c.Set("k", "v", time.Minute)

	got, ok := c.Get("k")
	if !ok || got.(string) != "v" {
		t.Fatalf("Get = %v, %v", got, ok)
	}
	if _, ok := c.Get("absent"); ok {
		t.Error("absent key reported present")
	}
}

func TestExpiry(t *testing.T) {
	c := New()
	c.Set("k", "v", -time.Second)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry served")
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, expired entries stay until the sweep", c.Size())
	}
	c.cleanup()
	if c.Size() != 0 {
		t.Errorf("Size after cleanup = %d", c.Size())
	}
}

func TestGenerateKeyStableAndDistinct(t *testing.T) {
	c := New()
	a := c.GenerateKey("search_news", "bitcoin|today")
	b := c.GenerateKey("search_news", "bitcoin|today")
	if a != b {
		t.Error("same inputs hashed differently")
	}
	if a == c.GenerateKey("search_news", "bitcoin|yesterday") {
		t.Error("different args collided")
	}
	if a == c.GenerateKey("analyze_topic_trend", "bitcoin|today") {
		t.Error("different ops collided")
	}
	if len(a) != 64 {
		t.Errorf("key length = %d, want sha256 hex", len(a))
	}
}
