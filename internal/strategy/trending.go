package strategy

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/reelrank/reelrank/internal/domain/ranking"
)

// TrendingName is the registry key of the trending strategy.
const TrendingName = "trending"

// Trending defaults.
const (
	DefaultTrendingRefreshInterval = time.Hour
	DefaultTrendingFetchLimit      = 100

	trendingRefreshTimeout = 30 * time.Second
)

// PopularitySource supplies the popularity-ranked candidate list.
type PopularitySource interface {
	TrendingContent(ctx context.Context, limit int) ([]ranking.Scored, error)
}

// Trending serves a periodically refreshed popularity list. Between refreshes
// it returns the cached list unconditionally; a stale cache triggers a
// background refresh and never blocks the caller (stale-while-revalidate).
type Trending struct {
	source          PopularitySource
	refreshInterval time.Duration
	fetchLimit      int
	now             func() time.Time
	logger          *zap.Logger

	mu         sync.Mutex
	cached     []ranking.Scored
	fetchedAt  time.Time
	refreshing bool
}

// NewTrending creates the trending strategy.
// refreshInterval <= 0 selects the one-hour default.
func NewTrending(source PopularitySource, refreshInterval time.Duration, logger *zap.Logger) *Trending {
	if refreshInterval <= 0 {
		refreshInterval = DefaultTrendingRefreshInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trending{
		source:          source,
		refreshInterval: refreshInterval,
		fetchLimit:      DefaultTrendingFetchLimit,
		now:             time.Now,
		logger:          logger,
	}
}

// Name returns the registry key.
func (t *Trending) Name() string { return TrendingName }

// GetRankings returns a prefix of the popularity list. The first call fetches
// synchronously; afterwards a stale list is served as-is while a background
// refresh replaces it.
func (t *Trending) GetRankings(ctx context.Context, _ string, limit int) ([]ranking.RankedItem, error) {
	t.mu.Lock()

	if t.cached == nil {
		items, err := t.source.TrendingContent(ctx, t.fetchLimit)
		if err != nil {
			t.mu.Unlock()
			return nil, err
		}
		t.cached = items
		t.fetchedAt = t.now()
	} else if t.now().Sub(t.fetchedAt) >= t.refreshInterval && !t.refreshing {
		t.refreshing = true
		go t.refresh()
	}

	prefix := t.cached
	if len(prefix) > limit {
		prefix = prefix[:limit]
	}
	snapshot := make([]ranking.Scored, len(prefix))
	copy(snapshot, prefix)
	t.mu.Unlock()

	return ranking.FromScored(TrendingName, snapshot), nil
}

// refresh replaces the cached list; on failure the stale list stays in place.
func (t *Trending) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), trendingRefreshTimeout)
	defer cancel()

	items, err := t.source.TrendingContent(ctx, t.fetchLimit)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.refreshing = false
	if err != nil {
		t.logger.Warn("trending refresh failed, serving stale list", zap.Error(err))
		return
	}
	t.cached = items
	t.fetchedAt = t.now()
}
