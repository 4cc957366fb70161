package strategy

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/reelrank/reelrank/internal/domain/content"
	"github.com/reelrank/reelrank/internal/domain/ranking"
	"github.com/reelrank/reelrank/internal/domain/vectormath"
)

// ContentSimilarityName is the registry key of the content-similarity strategy.
const ContentSimilarityName = "content_similarity"

// IndexMatch is one approximate-nearest-neighbor hit.
type IndexMatch struct {
	Key        content.Key
	Similarity float64
}

// Index is an optional approximate-nearest-neighbor index. When absent or
// failing, the strategy falls back to an exhaustive linear scan.
type Index interface {
	Search(ctx context.Context, vector []float64, k int, threshold float64) ([]IndexMatch, error)
}

// EmbeddingCatalog iterates stored content embeddings for the linear scan path.
type EmbeddingCatalog interface {
	EachEmbedding(fn func(key content.Key, vector []float64) bool)
}

// ContentSimilarity ranks content by cosine similarity between a user's
// preference vector and content embeddings.
type ContentSimilarity struct {
	catalog EmbeddingCatalog
	index   Index
	logger  *zap.Logger

	mu          sync.RWMutex
	preferences map[string][]float64
}

// NewContentSimilarity creates the content-similarity strategy.
// index may be nil; the linear scan over catalog is always available.
func NewContentSimilarity(catalog EmbeddingCatalog, index Index, logger *zap.Logger) *ContentSimilarity {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentSimilarity{
		catalog:     catalog,
		index:       index,
		logger:      logger,
		preferences: make(map[string][]float64),
	}
}

// Name returns the registry key.
func (s *ContentSimilarity) Name() string { return ContentSimilarityName }

// UpdateUserPreferences replaces the user's taste vector. Idempotent.
func (s *ContentSimilarity) UpdateUserPreferences(userID string, vector []float64) {
	copied := make([]float64, len(vector))
	copy(copied, vector)

	s.mu.Lock()
	s.preferences[userID] = copied
	s.mu.Unlock()
}

// GetRankings returns up to limit items by descending cosine similarity.
// A user without a stored preference vector yields an empty ranking.
// The index path is tried first when configured; on failure the strategy
// degrades to the linear scan without surfacing the error.
func (s *ContentSimilarity) GetRankings(ctx context.Context, userID string, limit int) ([]ranking.RankedItem, error) {
	s.mu.RLock()
	pref := s.preferences[userID]
	s.mu.RUnlock()

	if len(pref) == 0 {
		return nil, nil
	}

	if s.index != nil {
		matches, err := s.index.Search(ctx, pref, limit, 0)
		if err == nil {
			return indexMatchesToRanking(matches, limit), nil
		}
		s.logger.Warn("ANN index search failed, falling back to linear scan",
			zap.String("user_id", userID), zap.Error(err))
	}

	return s.linearScan(ctx, pref, limit)
}

func (s *ContentSimilarity) linearScan(ctx context.Context, pref []float64, limit int) ([]ranking.RankedItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var candidates []ranking.Scored
	s.catalog.EachEmbedding(func(key content.Key, vector []float64) bool {
		candidates = append(candidates, ranking.Scored{
			Key:   key,
			Score: vectormath.CosineScore(pref, vector),
		})
		return true
	})

	sortScored(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return ranking.FromScored(ContentSimilarityName, candidates), nil
}

func indexMatchesToRanking(matches []IndexMatch, limit int) []ranking.RankedItem {
	candidates := make([]ranking.Scored, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, ranking.Scored{Key: m.Key, Score: clampScore(m.Similarity)})
	}
	sortScored(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return ranking.FromScored(ContentSimilarityName, candidates)
}

func clampScore(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
