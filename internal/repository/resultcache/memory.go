// Package resultcache provides TTL caches for computed recommendation lists:
// an in-memory default and a Redis-backed variant for shared deployments.
package resultcache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/reelrank/reelrank/internal/domain/recommendation"
)

type memoryEntry struct {
	recs      []recommendation.Recommendation
	expiresAt time.Time
}

// Memory is an in-process TTL cache. Expired entries are dropped lazily on
// read. Concurrent writers to the same key race last-write-wins, which is
// acceptable because recomputation is idempotent.
type Memory struct {
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]memoryEntry

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Get returns the cached list for key, if present and unexpired.
func (m *Memory) Get(_ context.Context, key string) ([]recommendation.Recommendation, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		m.misses.Add(1)
		return nil, false, nil
	}
	if m.now().After(entry.expiresAt) {
		m.mu.Lock()
		if cur, still := m.entries[key]; still && m.now().After(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		m.misses.Add(1)
		return nil, false, nil
	}

	m.hits.Add(1)
	return entry.recs, true, nil
}

// Set stores the list under key for the given TTL.
func (m *Memory) Set(_ context.Context, key string, recs []recommendation.Recommendation, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{recs: recs, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Clear drops all entries. Statistics counters are preserved.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}

// Statistics reports hit/miss counters and the current entry count.
func (m *Memory) Statistics(_ context.Context) (recommendation.CacheStatistics, error) {
	m.mu.RLock()
	entries := int64(len(m.entries))
	m.mu.RUnlock()

	return recommendation.CacheStatistics{
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
		Entries: entries,
	}, nil
}
