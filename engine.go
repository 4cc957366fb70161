package reelrank

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/reelrank/reelrank/internal/domain"
	"github.com/reelrank/reelrank/internal/domain/content"
	"github.com/reelrank/reelrank/internal/domain/ranking"
	"github.com/reelrank/reelrank/internal/domain/recommendation"
	"github.com/reelrank/reelrank/internal/domain/viewing"
	"github.com/reelrank/reelrank/internal/repository/contentstore"
	"github.com/reelrank/reelrank/internal/strategy"
	"github.com/reelrank/reelrank/internal/usecase/recommend"
)

// Built-in strategy names, usable with UpdateWeights and RemoveStrategy.
const (
	StrategyCollaborative     = strategy.CollaborativeName
	StrategyContentSimilarity = strategy.ContentSimilarityName
	StrategyTrending          = strategy.TrendingName
	StrategyContextTemporal   = strategy.ContextTemporalName
)

// Content is a catalog record fed to the engine.
type Content struct {
	ID         string
	MediaType  string // "movie" or "tv"
	Title      string
	Genres     []string
	Year       int
	Popularity float64
	Overview   string
}

// WatchEvent records that a user watched a content item.
type WatchEvent struct {
	UserID    string
	ContentID string
	MediaType string
	Device    string    // "tv", "mobile", "desktop", "tablet"
	WatchedAt time.Time // zero means now
}

// StrategyContribution is one strategy's share of a recommendation's score.
type StrategyContribution struct {
	Strategy string
	Weight   float64
	Rank     int // 0 when the strategy did not rank the item
	Score    float64
}

// Recommendation is one item of the fused, explained result list.
type Recommendation struct {
	ID         string
	MediaType  string
	Title      string
	Genres     []string
	Year       int
	FinalScore float64
	Reasoning  string
	Breakdown  []StrategyContribution
}

// Stats summarizes how a request was served.
type Stats struct {
	StrategiesRun    int
	StrategiesFailed int
	Candidates       int
	HydrationDrops   int
	CacheHit         bool
}

// StrategyInfo describes a registered strategy and its fusion weight.
type StrategyInfo = recommend.StrategyInfo

// CacheStatistics reports result-cache effectiveness.
type CacheStatistics = recommendation.CacheStatistics

// RankedCandidate is one item of a custom strategy's output, ordered by
// descending relevance with scores in [0, 1].
type RankedCandidate struct {
	ID        string
	MediaType string
	Score     float64
}

// Strategy is a custom ranker pluggable via AddStrategy.
type Strategy interface {
	Name() string
	GetRankings(ctx context.Context, userID string, limit int) ([]RankedCandidate, error)
}

// Engine is the multi-strategy recommendation fusion engine.
type Engine struct {
	log      *zap.Logger
	store    *contentstore.Store
	service  *recommend.Service
	embedder Embedder

	collaborative *strategy.Collaborative
	contentSim    *strategy.ContentSimilarity
	temporal      *strategy.ContextTemporal
	trending      *strategy.Trending
}

// New creates an engine with the four built-in strategies registered under
// default weights. Options adjust tunables and backends.
func New(opts ...Option) (*Engine, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(s)
	}

	store := contentstore.New()

	e := &Engine{
		log:      s.logger,
		store:    store,
		embedder: s.embedder,

		collaborative: strategy.NewCollaborative(s.logger),
		contentSim:    strategy.NewContentSimilarity(store, s.index, s.logger),
		temporal:      strategy.NewContextTemporal(s.contextCap),
		trending:      strategy.NewTrending(store, s.trendingRefresh, s.logger),
	}

	e.service = recommend.NewService(store, store, s.cache, s.bank, s.logger, recommend.Options{
		RRFK:             s.rrfK,
		DiversityLambda:  s.diversityLambda,
		DiversityEnabled: s.diversityEnabled,
		OverfetchFactor:  s.overfetchFactor,
		OverfetchCap:     s.overfetchCap,
		StrategyTimeout:  s.strategyTimeout,
		FanOutTimeout:    s.fanoutTimeout,
		DefaultLimit:     s.defaultLimit,
		CacheTTL:         s.cacheTTL,
	})

	if !s.noBuiltins {
		builtins := []recommend.Strategy{e.collaborative, e.contentSim, e.trending, e.temporal}
		for _, strat := range builtins {
			if err := e.service.AddStrategy(strat, s.weights[strat.Name()]); err != nil {
				return nil, fmt.Errorf("register %s: %w", strat.Name(), err)
			}
		}
	}

	return e, nil
}

// QueryOption adjusts one recommendation request.
type QueryOption func(*recommend.Request)

// InContext pins the request to a viewing-context bucket key such as
// "evening_weekend_tv". Without it, the context-temporal strategy derives
// the bucket from the current time.
func InContext(contextKey string) QueryOption {
	return func(r *recommend.Request) { r.Context = contextKey }
}

// DiversityOverride forces diversity re-ranking on or off for one request.
func DiversityOverride(enabled bool) QueryOption {
	return func(r *recommend.Request) { r.Diversity = &enabled }
}

// GetHybridRecommendations serves a fused recommendation list for a user.
// A limit of 0 uses the configured default. Individual strategy failures
// degrade the result rather than failing the request.
func (e *Engine) GetHybridRecommendations(ctx context.Context, userID string, limit int, opts ...QueryOption) ([]Recommendation, error) {
	recs, _, err := e.recommend(ctx, userID, limit, opts...)
	return recs, err
}

// GetHybridRecommendationsWithStats is GetHybridRecommendations plus request
// diagnostics.
func (e *Engine) GetHybridRecommendationsWithStats(ctx context.Context, userID string, limit int, opts ...QueryOption) ([]Recommendation, Stats, error) {
	return e.recommend(ctx, userID, limit, opts...)
}

func (e *Engine) recommend(ctx context.Context, userID string, limit int, opts ...QueryOption) ([]Recommendation, Stats, error) {
	req := recommend.Request{UserID: userID, Limit: limit}
	for _, opt := range opts {
		opt(&req)
	}

	recs, stats, err := e.service.Recommend(ctx, req)
	if err != nil {
		return nil, Stats{}, err
	}

	out := make([]Recommendation, len(recs))
	for i := range recs {
		out[i] = toPublic(&recs[i])
	}
	return out, Stats(stats), nil
}

// AddStrategy registers a custom strategy with a fusion weight in [0, 1].
func (e *Engine) AddStrategy(s Strategy, weight float64) error {
	if s == nil {
		return fmt.Errorf("%w: nil strategy", domain.ErrUnknownStrategy)
	}
	return e.service.AddStrategy(&strategyAdapter{inner: s}, weight)
}

// RemoveStrategy unregisters a strategy by name.
func (e *Engine) RemoveStrategy(name string) error {
	return e.service.RemoveStrategy(name)
}

// UpdateWeights replaces fusion weights for the named strategies. Applied
// atomically or rejected as a whole.
func (e *Engine) UpdateWeights(weights map[string]float64) error {
	return e.service.UpdateWeights(weights)
}

// Strategies lists registered strategies sorted by name.
func (e *Engine) Strategies() []StrategyInfo {
	return e.service.Strategies()
}

// AddContent stores one catalog record for hydration and trending.
func (e *Engine) AddContent(c Content) error {
	record, err := toDomainContent(c)
	if err != nil {
		return err
	}
	e.store.Add(record)
	return nil
}

// AddContentBulk stores many catalog records at once.
func (e *Engine) AddContentBulk(items []Content) error {
	records := make([]content.Content, len(items))
	for i, c := range items {
		record, err := toDomainContent(c)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		records[i] = record
	}
	e.store.AddBulk(records)
	return nil
}

// AddContentEmbedding attaches an embedding vector to a stored content item,
// used by content-similarity ranking and diversity re-ranking.
func (e *Engine) AddContentEmbedding(id, mediaType string, vector []float64) error {
	key, err := toKey(id, mediaType)
	if err != nil {
		return err
	}
	if _, ok := e.store.Resolve(key); !ok {
		return fmt.Errorf("%w: %s", domain.ErrContentNotFound, key)
	}
	e.store.SetEmbedding(key, vector)
	return nil
}

// GenerateContentEmbedding computes and stores an embedding for a content
// item from its title and overview via the configured embedding provider.
func (e *Engine) GenerateContentEmbedding(ctx context.Context, id, mediaType string) error {
	if e.embedder == nil {
		return fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingProvider)
	}
	key, err := toKey(id, mediaType)
	if err != nil {
		return err
	}
	record, ok := e.store.Resolve(key)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrContentNotFound, key)
	}

	text := record.Title()
	if overview := record.Overview(); overview != "" {
		text += ". " + overview
	}
	vector, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed %s: %w", key, err)
	}
	e.store.SetEmbedding(key, vector)
	return nil
}

// ClearContentCache drops all stored content, embeddings, and cached results.
func (e *Engine) ClearContentCache(ctx context.Context) error {
	e.store.Clear()
	return e.service.ClearCache(ctx)
}

// ClearResultCache drops cached recommendation sets without touching content.
func (e *Engine) ClearResultCache(ctx context.Context) error {
	return e.service.ClearCache(ctx)
}

// CacheStatistics reports result-cache effectiveness.
func (e *Engine) CacheStatistics(ctx context.Context) (CacheStatistics, error) {
	return e.service.CacheStatistics(ctx)
}

// AddWatchEvent feeds a watch event to the collaborative and
// context-temporal strategies. Duplicate events are idempotent.
func (e *Engine) AddWatchEvent(ev WatchEvent) error {
	if ev.UserID == "" {
		return domain.ErrUserRequired
	}
	key, err := toKey(ev.ContentID, ev.MediaType)
	if err != nil {
		return err
	}
	device := viewing.Device(strings.ToLower(ev.Device))
	if !device.IsValid() {
		return fmt.Errorf("invalid device %q", ev.Device)
	}
	watchedAt := ev.WatchedAt
	if watchedAt.IsZero() {
		watchedAt = time.Now()
	}

	event := viewing.Event{
		UserID:    ev.UserID,
		Key:       key,
		Device:    device,
		WatchedAt: watchedAt,
	}
	e.collaborative.AddWatchEvent(event)
	e.temporal.AddWatchEvent(event)
	return nil
}

// UpdateUserPreferences sets a user's taste vector for content-similarity
// ranking. The vector must share the embedding space of stored content.
func (e *Engine) UpdateUserPreferences(userID string, vector []float64) error {
	if userID == "" {
		return domain.ErrUserRequired
	}
	e.contentSim.UpdateUserPreferences(userID, vector)
	return nil
}

// ContentCount returns the number of stored catalog records.
func (e *Engine) ContentCount() int {
	return e.store.Len()
}

type strategyAdapter struct {
	inner Strategy
}

func (a *strategyAdapter) Name() string { return a.inner.Name() }

func (a *strategyAdapter) GetRankings(ctx context.Context, userID string, limit int) ([]ranking.RankedItem, error) {
	candidates, err := a.inner.GetRankings(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	scored := make([]ranking.Scored, 0, len(candidates))
	for _, c := range candidates {
		key, err := toKey(c.ID, c.MediaType)
		if err != nil {
			return nil, err
		}
		scored = append(scored, ranking.Scored{Key: key, Score: c.Score})
	}
	return ranking.FromScored(a.inner.Name(), scored), nil
}

func toKey(id, mediaType string) (content.Key, error) {
	if id == "" {
		return content.Key{}, fmt.Errorf("%w: empty content id", domain.ErrContentNotFound)
	}
	mt := content.MediaType(strings.ToLower(mediaType))
	if !mt.IsValid() {
		return content.Key{}, fmt.Errorf("invalid media type %q", mediaType)
	}
	return content.Key{ID: id, MediaType: mt}, nil
}

func toDomainContent(c Content) (content.Content, error) {
	key, err := toKey(c.ID, c.MediaType)
	if err != nil {
		return content.Content{}, err
	}
	return content.New(key, c.Title, c.Genres, c.Year, c.Popularity, c.Overview), nil
}

func toPublic(rec *recommendation.Recommendation) Recommendation {
	c := rec.Content()
	contribs := rec.Contributions()
	breakdown := make([]StrategyContribution, len(contribs))
	for i := range contribs {
		rank, _ := contribs[i].Rank()
		breakdown[i] = StrategyContribution{
			Strategy: contribs[i].Strategy(),
			Weight:   contribs[i].Weight(),
			Rank:     rank,
			Score:    contribs[i].Value(),
		}
	}
	return Recommendation{
		ID:         c.Key().ID,
		MediaType:  string(c.Key().MediaType),
		Title:      c.Title(),
		Genres:     c.Genres(),
		Year:       c.Year(),
		FinalScore: rec.FinalScore(),
		Reasoning:  rec.Reasoning(),
		Breakdown:  breakdown,
	}
}
