// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/steamlens/steamlens/internal/catalog"
	"github.com/steamlens/steamlens/internal/recommend"
)

func result(titles ...string) recommend.Result {
	items := make([]recommend.ScoredItem, len(titles))
	for i, title := range titles {
		items[i] = recommend.ScoredItem{
			Item:  catalog.Item{Title: title},
			Score: 1.0 - float64(i)*0.1,
		}
	}
	return recommend.Result{Items: items}
}

func TestGetPutRoundTrip(t *testing.T) {
	c := NewResultCache(10, 0)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put("k", result("B", "C"))
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit after put")
	}
	if len(got.Items) != 2 || got.Items[0].Title != "B" {
		t.Errorf("unexpected cached value %+v", got)
	}
}

func TestLRUEvictionAtCapacity(t *testing.T) {
	c := NewResultCache(3, 0)
	for i := range 3 {
		c.Put(fmt.Sprintf("k%d", i), result("X"))
	}

	// Touch k0 so k1 becomes the eviction candidate.
	if _, ok := c.Get("k0"); !ok {
		t.Fatal("k0 should be present")
	}

	c.Put("k3", result("Y"))
	if c.Len() != 3 {
		t.Errorf("len = %d, want 3", c.Len())
	}
	if _, ok := c.Get("k1"); ok {
		t.Error("k1 should have been evicted as least recently used")
	}
	for _, k := range []string{"k0", "k2", "k3"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should have survived eviction", k)
		}
	}
}

func TestPutExistingKeyUpdatesWithoutEviction(t *testing.T) {
	c := NewResultCache(2, 0)
	c.Put("a", result("old"))
	c.Put("b", result("B"))
	c.Put("a", result("new"))

	if c.Len() != 2 {
		t.Errorf("len = %d, want 2", c.Len())
	}
	got, ok := c.Get("a")
	if !ok || got.Items[0].Title != "new" {
		t.Errorf("expected updated value, got %+v", got)
	}
}

func TestTTLExpiry(t *testing.T) {
	c := NewResultCache(10, 20*time.Millisecond)
	c.Put("k", result("B"))

	if _, ok := c.Get("k"); !ok {
		t.Fatal("fresh entry should hit")
	}

	time.Sleep(40 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should miss")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be removed, len = %d", c.Len())
	}
}

func TestDefensiveCopies(t *testing.T) {
	c := NewResultCache(10, 0)

	original := result("B", "C")
	c.Put("k", original)

	// Mutating what the caller handed in must not reach the cache.
	original.Items[0].Title = "tampered"
	first, _ := c.Get("k")
	if first.Items[0].Title != "B" {
		t.Error("cache aliased the inserted slice")
	}

	// Mutating what Get returned must not affect later reads.
	first.Items[1].Title = "also tampered"
	second, _ := c.Get("k")
	if second.Items[1].Title != "C" {
		t.Error("cache aliased a returned slice")
	}
}

func TestClear(t *testing.T) {
	c := NewResultCache(10, 0)
	c.Put("a", result("A"))
	c.Put("b", result("B"))

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("len after clear = %d, want 0", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("cleared entry should miss")
	}

	// The list must still be usable after a clear.
	c.Put("c", result("C"))
	if _, ok := c.Get("c"); !ok {
		t.Error("cache should accept entries after clear")
	}
}

func TestStats(t *testing.T) {
	c := NewResultCache(5, 0)
	c.Put("k", result("B"))

	c.Get("k")      // hit
	c.Get("absent") // miss

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 1/1", s.Hits, s.Misses)
	}
	if s.HitRate != 0.5 {
		t.Errorf("hit rate = %v, want 0.5", s.HitRate)
	}
	if s.Size != 1 || s.Capacity != 5 {
		t.Errorf("size/capacity = %d/%d, want 1/5", s.Size, s.Capacity)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := NewResultCache(50, 0)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				key := fmt.Sprintf("k%d", (g*7+i)%60)
				c.Put(key, result("B"))
				c.Get(key)
			}
		}()
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("len = %d exceeds capacity 50", c.Len())
	}
}
