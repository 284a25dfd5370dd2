package cache

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lborres/tipon/core"
)

func TestInMemoryCache_SetGet(t *testing.T) {
	// Arrange
	c := NewInMemoryCache(core.CacheConfig{TTL: time.Minute, MaxSize: 10})
	session := &core.Session{ID: "sess-1", UserID: "user-1"}

	// Act
	if err := c.Set("hash-1", session); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := c.Get("hash-1")

	// Assert
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != "sess-1" {
		t.Errorf("Get() session = %v, want sess-1", got)
	}

	// Unknown key is a miss
	if _, err := c.Get("unknown"); !errors.Is(err, core.ErrCacheNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrCacheNotFound", err)
	}
}

func TestInMemoryCache_TTLExpiry(t *testing.T) {
	// Arrange: entries expire immediately
	c := NewInMemoryCache(core.CacheConfig{TTL: time.Nanosecond, MaxSize: 10})
	if err := c.Set("hash-1", &core.Session{ID: "sess-1"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(time.Millisecond)

	// Act
	_, err := c.Get("hash-1")

	// Assert: expired entry reads as a miss and is evicted
	if !errors.Is(err, core.ErrCacheNotFound) {
		t.Fatalf("Get() after expiry error = %v, want ErrCacheNotFound", err)
	}
	if c.Len() != 0 {
		t.Errorf("expired entry still cached, Len() = %d", c.Len())
	}
}

func TestInMemoryCache_Delete(t *testing.T) {
	c := NewInMemoryCache(core.CacheConfig{TTL: time.Minute, MaxSize: 10})
	_ = c.Set("hash-1", &core.Session{ID: "sess-1"})

	if err := c.Delete("hash-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := c.Get("hash-1"); err == nil {
		t.Error("Get() after Delete should miss")
	}
	// Deleting an absent key is fine
	if err := c.Delete("hash-1"); err != nil {
		t.Errorf("repeated Delete() error = %v", err)
	}
}

func TestInMemoryCache_EvictionAtCapacity(t *testing.T) {
	// Arrange
	c := NewInMemoryCache(core.CacheConfig{TTL: time.Minute, MaxSize: 3})

	// Act: one more than capacity
	for i := 0; i < 4; i++ {
		key := fmt.Sprintf("hash-%d", i)
		if err := c.Set(key, &core.Session{ID: key}); err != nil {
			t.Fatalf("Set(%s) error = %v", key, err)
		}
	}

	// Assert
	if c.Len() > 3 {
		t.Errorf("Len() = %d, want at most 3", c.Len())
	}
	if c.Stats().Evictions == 0 {
		t.Error("an eviction should have been recorded")
	}
}

func TestInMemoryCache_Stats(t *testing.T) {
	// Arrange
	c := NewInMemoryCache(core.CacheConfig{TTL: time.Minute, MaxSize: 10})
	_ = c.Set("hash-1", &core.Session{ID: "sess-1"})

	// Act
	_, _ = c.Get("hash-1")  // hit
	_, _ = c.Get("unknown") // miss
	_ = c.Delete("hash-1")

	// Assert
	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 || stats.Deletes != 1 {
		t.Errorf("Stats() = %+v, want 1 hit, 1 miss, 1 set, 1 delete", stats)
	}
	if stats.TTL != time.Minute {
		t.Errorf("Stats().TTL = %v, want 1m", stats.TTL)
	}
}

func TestInMemoryCache_Clear(t *testing.T) {
	c := NewInMemoryCache(core.CacheConfig{TTL: time.Minute, MaxSize: 10})
	_ = c.Set("hash-1", &core.Session{ID: "sess-1"})
	_ = c.Set("hash-2", &core.Session{ID: "sess-2"})

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}
