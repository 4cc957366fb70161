// Package reasoningbank stores fusion-outcome patterns for adaptive strategy
// weight learning. Writes are fire-and-forget from the orchestrator's point
// of view; a failing bank never affects a response.
package reasoningbank

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/reelrank/reelrank/internal/domain/pattern"
)

const defaultQueryLimit = 50

// Memory is an in-process pattern store, newest first per (user, context).
type Memory struct {
	mu      sync.RWMutex
	records []pattern.Record
	cap     int
}

// NewMemory creates an in-memory reasoning bank keeping at most cap records
// (0 selects 1000).
func NewMemory(cap int) *Memory {
	if cap <= 0 {
		cap = 1000
	}
	return &Memory{cap: cap}
}

// StorePattern persists a record and returns its assigned id.
func (m *Memory) StorePattern(_ context.Context, rec pattern.Record) (string, error) {
	rec.ID = uuid.NewString()

	m.mu.Lock()
	m.records = append([]pattern.Record{rec}, m.records...)
	if len(m.records) > m.cap {
		m.records = m.records[:m.cap]
	}
	m.mu.Unlock()

	return rec.ID, nil
}

// FindSimilarPatterns returns records matching the query's user and context,
// newest first. Empty query fields match everything.
func (m *Memory) FindSimilarPatterns(_ context.Context, q pattern.Query) ([]pattern.Record, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []pattern.Record
	for _, rec := range m.records {
		if q.UserID != "" && rec.UserID != q.UserID {
			continue
		}
		if q.Context != "" && rec.Context != q.Context {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
