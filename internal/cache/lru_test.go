package cache

import (
	"testing"
	"time"
)

func TestLRUCacheBasic(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v; want 1, true", v, ok)
	}

	// "a" was just used, so adding "c" should evict "b"
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive eviction")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c := NewLRUCache[string](10, 10*time.Millisecond)

	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
	c.Set("x", "y")
	c.Set("z", "w")
	time.Sleep(20 * time.Millisecond)
	if n := c.CleanExpired(); n != 2 {
		t.Errorf("CleanExpired() = %d, want 2", n)
	}
}

func TestLRUCacheDeletePrefix(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("7:2025-01", 1)
	c.Set("7:2025-02", 2)
	c.Set("9:2025-01", 3)

	if n := c.DeletePrefix("7:"); n != 2 {
		t.Fatalf("DeletePrefix(7:) = %d, want 2", n)
	}
	if _, ok := c.Get("7:2025-01"); ok {
		t.Error("expected 7:2025-01 to be gone")
	}
	if _, ok := c.Get("9:2025-01"); !ok {
		t.Error("expected 9:2025-01 to remain")
	}
}

func TestLRUCachePurge(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("7:2025-01", 1)
	c.Set("9:2025-01", 2)

	if n := c.Purge(); n != 2 {
		t.Fatalf("Purge() = %d, want 2", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() after Purge = %d, want 0", c.Size())
	}
	c.Set("7:2025-01", 3)
	if v, ok := c.Get("7:2025-01"); !ok || v != 3 {
		t.Errorf("Get after Purge = %d, %v; want 3, true", v, ok)
	}
}
