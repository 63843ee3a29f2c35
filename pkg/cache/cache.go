package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/T9ner/echo-sub000/internal/utils"
	log "github.com/sirupsen/logrus"
)

const DefaultTTL = 5 * time.Minute

// Store caches query results for a bounded time. Entries are immutable once
// stored: writers replace them wholesale, never mutate them in place.
type Store interface {
	// Get returns the stored value if the entry has not expired. An expired
	// entry is treated as a miss and removed.
	Get(key string) (any, bool)
	// Set stores value under key, replacing any previous entry. A ttl <= 0
	// falls back to the store's default.
	Set(key string, value any, ttl time.Duration)
	// Delete removes a single entry and reports whether it existed.
	Delete(key string) bool
	// Invalidate removes every entry whose key starts with prefix and returns
	// the number of entries removed.
	Invalidate(prefix string) int
	// Clear removes all entries.
	Clear()
	// CleanupExpired removes expired entries and returns the number removed.
	CleanupExpired() int
	Stats() Stats
}

type Stats struct {
	TotalEntries   int
	ActiveEntries  int
	ExpiredEntries int
}

type entry struct {
	value     any
	createdAt time.Time
	expiresAt time.Time
}

// MemoryStore is an in-process Store backed by a map. The clock is injected
// so expiry can be tested without sleeping.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	clock      utils.Clock
}

func NewMemoryStore(defaultTTL time.Duration, clock utils.Clock) *MemoryStore {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	if clock == nil {
		clock = &utils.SystemClock{}
	}
	return &MemoryStore{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		clock:      clock,
	}
}

func (s *MemoryStore) Get(key string) (any, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		missesTotal.Inc()
		return nil, false
	}

	if !s.clock.Now().Before(e.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock: the entry may have been replaced
		// with a fresh one while we were upgrading.
		if current, ok := s.entries[key]; ok && current.expiresAt.Equal(e.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		missesTotal.Inc()
		return nil, false
	}

	hitsTotal.Inc()
	log.Debugf("cache hit: %s", key)
	return e.value, true
}

func (s *MemoryStore) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	now := s.clock.Now()

	s.mu.Lock()
	s.entries[key] = entry{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	s.mu.Unlock()

	log.Debugf("cache set: %s (ttl %s)", key, ttl)
}

func (s *MemoryStore) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	return true
}

func (s *MemoryStore) Invalidate(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			removed++
		}
	}
	if removed > 0 {
		invalidatedTotal.Add(float64(removed))
		log.Debugf("cache invalidated %d entries with prefix %q", removed, prefix)
	}
	return removed
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
}

func (s *MemoryStore) CleanupExpired() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	if removed > 0 {
		log.Debugf("cache cleanup removed %d expired entries", removed)
	}
	return removed
}

func (s *MemoryStore) Stats() Stats {
	now := s.clock.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	active := 0
	for _, e := range s.entries {
		if now.Before(e.expiresAt) {
			active++
		}
	}
	return Stats{
		TotalEntries:   len(s.entries),
		ActiveEntries:  active,
		ExpiredEntries: len(s.entries) - active,
	}
}
