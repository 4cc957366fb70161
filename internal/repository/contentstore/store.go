// Package contentstore is the in-memory content-hydration cache: catalog
// records plus optional embeddings, keyed by content identity.
package contentstore

import (
	"context"
	"sort"
	"sync"

	"github.com/reelrank/reelrank/internal/domain/content"
	"github.com/reelrank/reelrank/internal/domain/ranking"
)

// Store holds catalog records and their embeddings.
// Safe for concurrent use; readers-many/writers-one.
type Store struct {
	mu         sync.RWMutex
	records    map[content.Key]content.Content
	embeddings map[content.Key][]float64
}

// New creates an empty content store.
func New() *Store {
	return &Store{
		records:    make(map[content.Key]content.Content),
		embeddings: make(map[content.Key][]float64),
	}
}

// Add inserts or replaces a catalog record.
func (s *Store) Add(c content.Content) {
	s.mu.Lock()
	s.records[c.Key()] = c
	s.mu.Unlock()
}

// AddBulk inserts or replaces multiple catalog records.
func (s *Store) AddBulk(items []content.Content) {
	s.mu.Lock()
	for _, c := range items {
		s.records[c.Key()] = c
	}
	s.mu.Unlock()
}

// SetEmbedding stores a content embedding.
func (s *Store) SetEmbedding(key content.Key, vector []float64) {
	copied := make([]float64, len(vector))
	copy(copied, vector)

	s.mu.Lock()
	s.embeddings[key] = copied
	s.mu.Unlock()
}

// Clear drops all records and embeddings.
func (s *Store) Clear() {
	s.mu.Lock()
	s.records = make(map[content.Key]content.Content)
	s.embeddings = make(map[content.Key][]float64)
	s.mu.Unlock()
}

// Resolve hydrates a content key into its catalog record.
func (s *Store) Resolve(key content.Key) (content.Content, bool) {
	s.mu.RLock()
	c, ok := s.records[key]
	s.mu.RUnlock()
	return c, ok
}

// Embedding returns the stored embedding for a content key.
func (s *Store) Embedding(key content.Key) ([]float64, bool) {
	s.mu.RLock()
	vec, ok := s.embeddings[key]
	s.mu.RUnlock()
	return vec, ok
}

// EachEmbedding iterates stored embeddings until fn returns false.
// The iteration order is unspecified.
func (s *Store) EachEmbedding(fn func(key content.Key, vector []float64) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for key, vec := range s.embeddings {
		if !fn(key, vec) {
			return
		}
	}
}

// Len returns the number of catalog records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// TrendingContent returns up to limit records ordered by catalog popularity
// descending, key ascending, with scores normalized to [0, 1]. Implements the
// trending strategy's popularity source.
func (s *Store) TrendingContent(_ context.Context, limit int) ([]ranking.Scored, error) {
	s.mu.RLock()
	candidates := make([]ranking.Scored, 0, len(s.records))
	maxPop := 0.0
	for key, c := range s.records {
		if c.Popularity() > maxPop {
			maxPop = c.Popularity()
		}
		candidates = append(candidates, ranking.Scored{Key: key, Score: c.Popularity()})
	}
	s.mu.RUnlock()

	if maxPop > 0 {
		for i := range candidates {
			candidates[i].Score /= maxPop
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Key.Less(candidates[j].Key)
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}
