package cache

import (
	"testing"
	"time"

	"github.com/T9ner/echo-sub000/internal/utils"
	"github.com/stretchr/testify/assert"
)

func TestMemoryStoreGet(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("returns stored value before ttl elapses", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: now}
		store := NewMemoryStore(5*time.Minute, clock)

		store.Set("events:list:page=1", []string{"a", "b"}, 5*time.Minute)
		clock.Advance(4*time.Minute + 59*time.Second)

		got, ok := store.Get("events:list:page=1")
		assert.True(t, ok)
		assert.Equal(t, []string{"a", "b"}, got)
	})

	t.Run("treats expired entry as miss and evicts it", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: now}
		store := NewMemoryStore(5*time.Minute, clock)

		store.Set("events:list:page=1", "payload", 5*time.Minute)
		clock.Advance(5 * time.Minute)

		_, ok := store.Get("events:list:page=1")
		assert.False(t, ok)
		assert.Equal(t, 0, store.Stats().TotalEntries)
	})

	t.Run("misses on unknown key", func(t *testing.T) {
		store := NewMemoryStore(5*time.Minute, &utils.MockClock{FixedNow: now})

		_, ok := store.Get("events:list:page=2")
		assert.False(t, ok)
	})

	t.Run("set replaces the previous entry wholesale", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: now}
		store := NewMemoryStore(5*time.Minute, clock)

		store.Set("events:month:2025-03", "old", time.Minute)
		clock.Advance(30 * time.Second)
		store.Set("events:month:2025-03", "new", time.Minute)
		clock.Advance(45 * time.Second)

		got, ok := store.Get("events:month:2025-03")
		assert.True(t, ok)
		assert.Equal(t, "new", got)
	})

	t.Run("falls back to default ttl when ttl is zero", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: now}
		store := NewMemoryStore(10*time.Minute, clock)

		store.Set("analytics:by-type", 42, 0)
		clock.Advance(9 * time.Minute)

		got, ok := store.Get("analytics:by-type")
		assert.True(t, ok)
		assert.Equal(t, 42, got)

		clock.Advance(time.Minute)
		_, ok = store.Get("analytics:by-type")
		assert.False(t, ok)
	})
}

func TestMemoryStoreInvalidate(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("removes only entries under the prefix", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: now}
		store := NewMemoryStore(5*time.Minute, clock)

		store.Set("events:list:page=1", 1, time.Minute)
		store.Set("events:month:2025-03", 2, time.Minute)
		store.Set("analytics:by-type", 3, time.Minute)

		removed := store.Invalidate("events:")
		assert.Equal(t, 2, removed)

		_, ok := store.Get("events:list:page=1")
		assert.False(t, ok)
		_, ok = store.Get("events:month:2025-03")
		assert.False(t, ok)

		got, ok := store.Get("analytics:by-type")
		assert.True(t, ok)
		assert.Equal(t, 3, got)
	})

	t.Run("returns zero when nothing matches", func(t *testing.T) {
		store := NewMemoryStore(5*time.Minute, &utils.MockClock{FixedNow: now})
		store.Set("analytics:by-type", 3, time.Minute)

		assert.Equal(t, 0, store.Invalidate("events:"))
		assert.Equal(t, 1, store.Stats().TotalEntries)
	})
}

func TestMemoryStoreMaintenance(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("cleanup removes expired entries only", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: now}
		store := NewMemoryStore(5*time.Minute, clock)

		store.Set("events:a", 1, time.Minute)
		store.Set("events:b", 2, 10*time.Minute)
		clock.Advance(2 * time.Minute)

		assert.Equal(t, 1, store.CleanupExpired())

		stats := store.Stats()
		assert.Equal(t, 1, stats.TotalEntries)
		assert.Equal(t, 1, stats.ActiveEntries)
		assert.Equal(t, 0, stats.ExpiredEntries)
	})

	t.Run("stats separates active from expired", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: now}
		store := NewMemoryStore(5*time.Minute, clock)

		store.Set("events:a", 1, time.Minute)
		store.Set("events:b", 2, 10*time.Minute)
		clock.Advance(2 * time.Minute)

		stats := store.Stats()
		assert.Equal(t, 2, stats.TotalEntries)
		assert.Equal(t, 1, stats.ActiveEntries)
		assert.Equal(t, 1, stats.ExpiredEntries)
	})

	t.Run("clear empties the store", func(t *testing.T) {
		store := NewMemoryStore(5*time.Minute, &utils.MockClock{FixedNow: now})
		store.Set("events:a", 1, time.Minute)
		store.Set("analytics:b", 2, time.Minute)

		store.Clear()
		assert.Equal(t, 0, store.Stats().TotalEntries)
	})

	t.Run("delete removes a single entry", func(t *testing.T) {
		store := NewMemoryStore(5*time.Minute, &utils.MockClock{FixedNow: now})
		store.Set("events:a", 1, time.Minute)

		assert.True(t, store.Delete("events:a"))
		assert.False(t, store.Delete("events:a"))
	})
}
