package recommend

import (
	"context"
	"time"

	"github.com/reelrank/reelrank/internal/domain/content"
	"github.com/reelrank/reelrank/internal/domain/pattern"
	"github.com/reelrank/reelrank/internal/domain/ranking"
	"github.com/reelrank/reelrank/internal/domain/recommendation"
)

// Strategy is a pluggable ranker. GetRankings returns at most limit items
// ordered by descending relevance with dense 1..N ranks; "no data" is an
// empty result, not an error. Any returned error is recovered by the
// orchestrator and degrades to an empty contribution.
type Strategy interface {
	Name() string
	GetRankings(ctx context.Context, userID string, limit int) ([]ranking.RankedItem, error)
}

// ContentResolver hydrates content keys into catalog records.
type ContentResolver interface {
	Resolve(key content.Key) (content.Content, bool)
}

// EmbeddingSource supplies content embeddings for diversity re-ranking.
type EmbeddingSource interface {
	Embedding(key content.Key) ([]float64, bool)
}

// ResultCache is the optional query-result cache. A miss is (nil, false, nil);
// errors mean the backend is unreachable and the orchestrator proceeds uncached.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]recommendation.Recommendation, bool, error)
	Set(ctx context.Context, key string, recs []recommendation.Recommendation, ttl time.Duration) error
	Clear(ctx context.Context) error
	Statistics(ctx context.Context) (recommendation.CacheStatistics, error)
}

// ReasoningBank is the optional pattern store receiving fire-and-forget
// records of dominant strategies for adaptive weight learning.
type ReasoningBank interface {
	StorePattern(ctx context.Context, rec pattern.Record) (string, error)
}
