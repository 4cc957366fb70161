package reelrank

import (
	"context"
	"time"

	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/reelrank/reelrank/internal/config"
	"github.com/reelrank/reelrank/internal/repository/reasoningbank"
	"github.com/reelrank/reelrank/internal/repository/resultcache"
	"github.com/reelrank/reelrank/internal/strategy"
	"github.com/reelrank/reelrank/internal/usecase/recommend"
)

// Embedder computes text embeddings for catalog records.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

type settings struct {
	logger   *zap.Logger
	cache    recommend.ResultCache
	bank     recommend.ReasoningBank
	index    strategy.Index
	embedder Embedder

	rrfK             int
	diversityEnabled bool
	diversityLambda  float64
	weights          map[string]float64
	strategyTimeout  time.Duration
	fanoutTimeout    time.Duration
	defaultLimit     int
	overfetchFactor  int
	overfetchCap     int
	cacheTTL         time.Duration
	trendingRefresh  time.Duration
	contextCap       int
	noBuiltins       bool
}

func defaultSettings() *settings {
	return &settings{
		logger: zap.NewNop(),
		cache:  resultcache.NewMemory(),
		bank:   reasoningbank.NewMemory(0),
		weights: map[string]float64{
			strategy.CollaborativeName:     0.30,
			strategy.ContentSimilarityName: 0.30,
			strategy.TrendingName:          0.20,
			strategy.ContextTemporalName:   0.20,
		},
	}
}

// Option configures the engine.
type Option func(*settings)

// WithLogger sets the zap logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *settings) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithResultCache replaces the default in-memory result cache.
func WithResultCache(cache recommend.ResultCache) Option {
	return func(s *settings) { s.cache = cache }
}

// WithoutResultCache disables result caching entirely.
func WithoutResultCache() Option {
	return func(s *settings) { s.cache = nil }
}

// WithRedis backs both the result cache and the reasoning bank with Redis,
// replacing the in-memory defaults.
func WithRedis(client rueidis.Client) Option {
	return func(s *settings) {
		s.cache = resultcache.NewRedis(client, resultcache.DefaultKeyPrefix)
		s.bank = reasoningbank.NewRedis(client)
	}
}

// WithReasoningBank replaces the default in-memory reasoning bank.
func WithReasoningBank(bank recommend.ReasoningBank) Option {
	return func(s *settings) { s.bank = bank }
}

// WithIndex plugs an approximate nearest neighbor index into the
// content-similarity strategy. Without one, similarity falls back to a
// linear scan over stored embeddings.
func WithIndex(index strategy.Index) Option {
	return func(s *settings) { s.index = index }
}

// WithEmbedder plugs an embedding provider used by GenerateContentEmbedding.
func WithEmbedder(e Embedder) Option {
	return func(s *settings) { s.embedder = e }
}

// WithRRFK overrides the Reciprocal Rank Fusion constant (default 60).
func WithRRFK(k int) Option {
	return func(s *settings) { s.rrfK = k }
}

// WithDiversity enables MMR diversity re-ranking by default for all requests.
func WithDiversity(enabled bool) Option {
	return func(s *settings) { s.diversityEnabled = enabled }
}

// WithDiversityLambda sets the MMR relevance/diversity trade-off in (0, 1].
// Higher values favor relevance. Default 0.85.
func WithDiversityLambda(lambda float64) Option {
	return func(s *settings) { s.diversityLambda = lambda }
}

// WithWeights sets initial fusion weights for the built-in strategies.
func WithWeights(weights map[string]float64) Option {
	return func(s *settings) {
		if len(weights) > 0 {
			s.weights = weights
		}
	}
}

// WithTimeouts sets the per-strategy time box and the overall fan-out deadline.
func WithTimeouts(strategyTimeout, fanoutTimeout time.Duration) Option {
	return func(s *settings) {
		s.strategyTimeout = strategyTimeout
		s.fanoutTimeout = fanoutTimeout
	}
}

// WithDefaultLimit sets the result count used when a request passes limit 0.
func WithDefaultLimit(limit int) Option {
	return func(s *settings) { s.defaultLimit = limit }
}

// WithCacheTTL sets the result cache entry lifetime (default 5 minutes).
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *settings) { s.cacheTTL = ttl }
}

// WithTrendingRefreshInterval sets how often the trending strategy refreshes
// its popularity list (default 1 hour).
func WithTrendingRefreshInterval(interval time.Duration) Option {
	return func(s *settings) { s.trendingRefresh = interval }
}

// WithContextCap bounds per-context preference history in the
// context-temporal strategy (default 20).
func WithContextCap(cap int) Option {
	return func(s *settings) { s.contextCap = cap }
}

// WithoutBuiltinStrategies starts the engine with an empty registry; the
// caller registers strategies explicitly via AddStrategy.
func WithoutBuiltinStrategies() Option {
	return func(s *settings) { s.noBuiltins = true }
}

// WithConfig applies engine tunables from a loaded configuration file.
// Options placed after it still override individual values.
func WithConfig(cfg config.Config) Option {
	return func(s *settings) {
		s.rrfK = cfg.Fusion.RRFK
		s.diversityEnabled = cfg.Fusion.DiversityEnabled
		s.diversityLambda = cfg.Fusion.DiversityLambda
		s.overfetchFactor = cfg.Fusion.OverfetchFactor
		s.overfetchCap = cfg.Fusion.OverfetchCap
		s.strategyTimeout = cfg.StrategyTimeout()
		s.fanoutTimeout = cfg.FanOutTimeout()
		s.defaultLimit = cfg.Fusion.DefaultLimit
		s.cacheTTL = cfg.CacheTTL()
		s.trendingRefresh = cfg.TrendingRefreshInterval()
		s.contextCap = cfg.Temporal.ContextCap
		if len(cfg.Weights) > 0 {
			s.weights = cfg.Weights
		}
	}
}
