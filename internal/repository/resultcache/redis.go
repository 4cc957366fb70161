package resultcache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/rueidis"

	"github.com/reelrank/reelrank/internal/domain"
	"github.com/reelrank/reelrank/internal/domain/recommendation"
)

// DefaultKeyPrefix namespaces cache keys in a shared Redis.
const DefaultKeyPrefix = "reelrank:recs:"

// Redis is a rueidis-backed TTL cache shared across processes. Entries expire
// server-side via SET EX; a key-set tracks live keys for Clear and entry
// counts.
type Redis struct {
	client rueidis.Client
	prefix string

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedis creates a Redis-backed cache.
// keyPrefix empty selects the default prefix.
func NewRedis(client rueidis.Client, keyPrefix string) *Redis {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &Redis{client: client, prefix: keyPrefix}
}

func (r *Redis) key(k string) string { return r.prefix + k }

func (r *Redis) keySet() string { return r.prefix + "keys" }

// Get returns the cached list for key, if present.
func (r *Redis) Get(ctx context.Context, key string) ([]recommendation.Recommendation, bool, error) {
	cmd := r.client.B().Get().Key(r.key(key)).Build()
	data, err := r.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			r.misses.Add(1)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: get: %w", domain.ErrCacheUnavailable, err)
	}

	var cached []cachedRecommendation
	if err := json.Unmarshal(data, &cached); err != nil {
		// Treat a corrupt entry as a miss; it will be overwritten.
		r.misses.Add(1)
		return nil, false, nil
	}

	r.hits.Add(1)
	return fromCached(cached), true, nil
}

// Set stores the list under key with a server-side TTL.
func (r *Redis) Set(ctx context.Context, key string, recs []recommendation.Recommendation, ttl time.Duration) error {
	data, err := json.Marshal(toCached(recs))
	if err != nil {
		return fmt.Errorf("marshal cached recommendations: %w", err)
	}

	setCmd := r.client.B().Set().Key(r.key(key)).Value(string(data)).Ex(ttl).Build()
	if err := r.client.Do(ctx, setCmd).Error(); err != nil {
		return fmt.Errorf("%w: set: %w", domain.ErrCacheUnavailable, err)
	}

	trackCmd := r.client.B().Sadd().Key(r.keySet()).Member(r.key(key)).Build()
	if err := r.client.Do(ctx, trackCmd).Error(); err != nil {
		return fmt.Errorf("%w: track key: %w", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// Clear deletes all tracked cache entries.
func (r *Redis) Clear(ctx context.Context) error {
	membersCmd := r.client.B().Smembers().Key(r.keySet()).Build()
	keys, err := r.client.Do(ctx, membersCmd).AsStrSlice()
	if err != nil {
		return fmt.Errorf("%w: list keys: %w", domain.ErrCacheUnavailable, err)
	}

	keys = append(keys, r.keySet())
	delCmd := r.client.B().Del().Key(keys...).Build()
	if err := r.client.Do(ctx, delCmd).Error(); err != nil {
		return fmt.Errorf("%w: clear: %w", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// Statistics reports local hit/miss counters and the tracked entry count.
// Counts include keys whose TTL elapsed but were not yet untracked.
func (r *Redis) Statistics(ctx context.Context) (recommendation.CacheStatistics, error) {
	cmd := r.client.B().Scard().Key(r.keySet()).Build()
	entries, err := r.client.Do(ctx, cmd).AsInt64()
	if err != nil && !rueidis.IsRedisNil(err) {
		return recommendation.CacheStatistics{}, fmt.Errorf("%w: stats: %w", domain.ErrCacheUnavailable, err)
	}

	return recommendation.CacheStatistics{
		Hits:    r.hits.Load(),
		Misses:  r.misses.Load(),
		Entries: entries,
	}, nil
}
