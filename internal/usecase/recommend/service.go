// Package recommend orchestrates the hybrid recommendation pipeline: fan-out
// to registered strategies, rank fusion, optional diversity re-ranking,
// hydration, explanation, result caching, and reasoning bank capture.
package recommend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/reelrank/reelrank/internal/domain"
	"github.com/reelrank/reelrank/internal/domain/content"
	domfusion "github.com/reelrank/reelrank/internal/domain/fusion"
	"github.com/reelrank/reelrank/internal/domain/pattern"
	"github.com/reelrank/reelrank/internal/domain/ranking"
	"github.com/reelrank/reelrank/internal/domain/recommendation"
	"github.com/reelrank/reelrank/internal/domain/viewing"
	logpkg "github.com/reelrank/reelrank/internal/logger"
	"github.com/reelrank/reelrank/internal/metrics"
	"github.com/reelrank/reelrank/internal/usecase/fusion"
)

const patternWriteTimeout = 5 * time.Second

// Options tunes the orchestrator. Zero values fall back to defaults.
type Options struct {
	RRFK             int
	DiversityLambda  float64
	DiversityEnabled bool
	OverfetchFactor  int
	OverfetchCap     int
	StrategyTimeout  time.Duration
	FanOutTimeout    time.Duration
	DefaultLimit     int
	CacheTTL         time.Duration
}

func (o *Options) applyDefaults() {
	if o.RRFK <= 0 {
		o.RRFK = fusion.DefaultK
	}
	if o.DiversityLambda <= 0 || o.DiversityLambda > 1 {
		o.DiversityLambda = fusion.DefaultLambda
	}
	if o.OverfetchFactor <= 0 {
		o.OverfetchFactor = 3
	}
	if o.OverfetchCap <= 0 {
		o.OverfetchCap = 100
	}
	if o.StrategyTimeout <= 0 {
		o.StrategyTimeout = 800 * time.Millisecond
	}
	if o.FanOutTimeout <= 0 {
		o.FanOutTimeout = 1500 * time.Millisecond
	}
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = 20
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
}

// Request describes one hybrid recommendation query.
type Request struct {
	UserID  string
	Limit   int    // 0 means the configured default
	Context string // viewing-context bucket key, e.g. "evening_weekend_tv"

	// Diversity overrides the configured diversity default when non-nil.
	Diversity *bool
}

// Service is the fusion orchestrator. Cache, embeddings, and reasoning bank
// are optional; a nil dependency disables the corresponding stage.
type Service struct {
	registry   *registry
	resolver   ContentResolver
	embeddings EmbeddingSource
	cache      ResultCache
	bank       ReasoningBank
	logger     *zap.Logger
	opts       Options

	group singleflight.Group
	now   func() time.Time
}

// NewService creates the orchestrator. resolver is required.
func NewService(
	resolver ContentResolver,
	embeddings EmbeddingSource,
	cache ResultCache,
	bank ReasoningBank,
	log *zap.Logger,
	opts Options,
) *Service {
	opts.applyDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		registry:   newRegistry(),
		resolver:   resolver,
		embeddings: embeddings,
		cache:      cache,
		bank:       bank,
		logger:     log,
		opts:       opts,
		now:        time.Now,
	}
}

// AddStrategy registers a strategy under its name with a fusion weight.
func (s *Service) AddStrategy(strat Strategy, weight float64) error {
	return s.registry.add(strat, weight)
}

// RemoveStrategy unregisters a strategy by name.
func (s *Service) RemoveStrategy(name string) error {
	return s.registry.remove(name)
}

// UpdateWeights replaces fusion weights for the named strategies. The batch
// is applied atomically or rejected as a whole.
func (s *Service) UpdateWeights(weights map[string]float64) error {
	return s.registry.updateWeights(weights)
}

// Strategies lists registered strategies sorted by name.
func (s *Service) Strategies() []StrategyInfo {
	return s.registry.info()
}

// ClearCache drops all cached recommendation sets.
func (s *Service) ClearCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Clear(ctx)
}

// CacheStatistics reports result-cache effectiveness.
func (s *Service) CacheStatistics(ctx context.Context) (recommendation.CacheStatistics, error) {
	if s.cache == nil {
		return recommendation.CacheStatistics{}, nil
	}
	return s.cache.Statistics(ctx)
}

// Recommend serves one hybrid recommendation request. Strategy failures,
// cache trouble, and hydration misses degrade the result; only invalid input
// produces an error.
func (s *Service) Recommend(ctx context.Context, req Request) ([]recommendation.Recommendation, recommendation.Stats, error) {
	if req.UserID == "" {
		return nil, recommendation.Stats{}, domain.ErrUserRequired
	}
	if req.Limit < 0 {
		return nil, recommendation.Stats{}, fmt.Errorf("%w: %d", domain.ErrInvalidLimit, req.Limit)
	}
	if req.Limit == 0 {
		req.Limit = s.opts.DefaultLimit
	}
	diversity := s.opts.DiversityEnabled
	if req.Diversity != nil {
		diversity = *req.Diversity
	}
	if req.Context != "" {
		ctx = viewing.NewContext(ctx, req.Context)
	}
	ctx = logpkg.ContextWithLogger(ctx, s.logger.With(zap.String("user_id", req.UserID)))
	log := logpkg.FromContext(ctx)

	key := cacheKey(req.UserID, req.Limit, req.Context, diversity)

	if s.cache != nil {
		recs, hit, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.ResultCacheTotal.WithLabelValues("error").Inc()
			log.Warn("result cache get failed", zap.Error(err))
		case hit:
			metrics.ResultCacheTotal.WithLabelValues("hit").Inc()
			metrics.FusionRequestsTotal.WithLabelValues("cache_hit").Inc()
			return recs, recommendation.Stats{Candidates: len(recs), CacheHit: true}, nil
		default:
			metrics.ResultCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	type outcome struct {
		recs  []recommendation.Recommendation
		stats recommendation.Stats
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		recs, stats, err := s.compute(ctx, req, diversity, key)
		if err != nil {
			return nil, err
		}
		return outcome{recs: recs, stats: stats}, nil
	})
	if err != nil {
		return nil, recommendation.Stats{}, err
	}
	out := v.(outcome)
	return out.recs, out.stats, nil
}

func (s *Service) compute(ctx context.Context, req Request, diversity bool, key string) ([]recommendation.Recommendation, recommendation.Stats, error) {
	log := logpkg.FromContext(ctx)

	strategies, weights := s.registry.snapshot()
	if len(strategies) == 0 {
		metrics.FusionRequestsTotal.WithLabelValues("empty").Inc()
		return nil, recommendation.Stats{}, nil
	}

	rankingLimit := req.Limit * s.opts.OverfetchFactor
	if rankingLimit > s.opts.OverfetchCap {
		rankingLimit = s.opts.OverfetchCap
	}

	rankings, failed := s.fanOut(ctx, strategies, req.UserID, rankingLimit)
	stats := recommendation.Stats{
		StrategiesRun:    len(strategies),
		StrategiesFailed: failed,
	}

	fused := fusion.Fuse(rankings, weights, s.opts.RRFK)
	stats.Candidates = len(fused)
	metrics.FusionCandidates.Observe(float64(len(fused)))
	if len(fused) == 0 {
		metrics.FusionRequestsTotal.WithLabelValues("empty").Inc()
		return nil, stats, nil
	}

	if diversity {
		fused = fusion.Rerank(fused, s.embeddingLookup(), s.opts.DiversityLambda)
	}
	if len(fused) > req.Limit {
		fused = fused[:req.Limit]
	}

	recs := make([]recommendation.Recommendation, 0, len(fused))
	for i := range fused {
		res := &fused[i]
		c, ok := s.resolver.Resolve(res.Key())
		if !ok {
			stats.HydrationDrops++
			continue
		}
		recs = append(recs, recommendation.New(c, res.Score(), res.Contributions(), buildReasoning(res)))
	}
	if stats.HydrationDrops > 0 {
		metrics.HydrationDropsTotal.Add(float64(stats.HydrationDrops))
		log.Warn("dropped unresolved candidates", zap.Int("count", stats.HydrationDrops))
	}

	metrics.FusionRequestsTotal.WithLabelValues("computed").Inc()

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, recs, s.opts.CacheTTL); err != nil {
			metrics.ResultCacheTotal.WithLabelValues("error").Inc()
			log.Warn("result cache set failed", zap.Error(err))
		}
	}
	if s.bank != nil {
		go s.recordPattern(req, weights, fused[0])
	}

	return recs, stats, nil
}

type strategyResult struct {
	name  string
	items []ranking.RankedItem
	err   error
}

// fanOut runs every strategy concurrently under the overall deadline and
// collects whatever finishes in time. Returns per-strategy rankings and the
// number of strategies that failed or missed the deadline.
func (s *Service) fanOut(ctx context.Context, strategies map[string]Strategy, userID string, limit int) (map[string][]ranking.RankedItem, int) {
	log := logpkg.FromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, s.opts.FanOutTimeout)
	defer cancel()

	results := make(chan strategyResult, len(strategies))
	for name, strat := range strategies {
		go s.runStrategy(ctx, name, strat, userID, limit, results)
	}

	rankings := make(map[string][]ranking.RankedItem, len(strategies))
	failed := 0
	for done := 0; done < len(strategies); {
		select {
		case res := <-results:
			done++
			if res.err != nil {
				failed++
				log.Warn("strategy failed",
					zap.String("strategy", res.name),
					zap.Error(res.err),
				)
				continue
			}
			rankings[res.name] = res.items
		case <-ctx.Done():
			late := len(strategies) - done
			failed += late
			log.Warn("fan-out deadline expired", zap.Int("pending", late))
			return rankings, failed
		}
	}
	return rankings, failed
}

// runStrategy executes one strategy under its own time box. Panics are
// converted to errors so a broken strategy cannot take down the request.
func (s *Service) runStrategy(ctx context.Context, name string, strat Strategy, userID string, limit int, out chan<- strategyResult) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StrategyTimeout)
	defer cancel()

	start := s.now()
	defer func() {
		if r := recover(); r != nil {
			metrics.StrategyDuration.WithLabelValues(name, "error").Observe(s.now().Sub(start).Seconds())
			out <- strategyResult{name: name, err: fmt.Errorf("strategy %q panicked: %v", name, r)}
		}
	}()

	items, err := strat.GetRankings(ctx, userID, limit)

	status := "ok"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status = "timeout"
	case err != nil:
		status = "error"
	}
	metrics.StrategyDuration.WithLabelValues(name, status).Observe(s.now().Sub(start).Seconds())

	out <- strategyResult{name: name, items: items, err: err}
}

func (s *Service) embeddingLookup() fusion.EmbeddingLookup {
	if s.embeddings == nil {
		return nil
	}
	return func(key content.Key) ([]float64, bool) {
		return s.embeddings.Embedding(key)
	}
}

// recordPattern writes the dominant strategy of the served top result to the
// reasoning bank. Fire-and-forget with its own deadline.
func (s *Service) recordPattern(req Request, weights map[string]float64, top domfusion.Result) {
	dominant, ok := top.Dominant()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), patternWriteTimeout)
	defer cancel()

	rec := pattern.Record{
		UserID:           req.UserID,
		Context:          req.Context,
		DominantStrategy: dominant.Strategy(),
		Weights:          weights,
		TopScore:         top.Score(),
		CreatedAt:        s.now(),
	}
	if _, err := s.bank.StorePattern(ctx, rec); err != nil {
		metrics.ReasoningBankWritesTotal.WithLabelValues("error").Inc()
		s.logger.Warn("reasoning bank write failed", zap.Error(err))
		return
	}
	metrics.ReasoningBankWritesTotal.WithLabelValues("ok").Inc()
}

// cacheKey derives a deterministic key from the request parameters that
// shape the result set.
func cacheKey(userID string, limit int, viewingContext string, diversity bool) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s|%t", userID, limit, viewingContext, diversity)))
	return hex.EncodeToString(sum[:])
}
