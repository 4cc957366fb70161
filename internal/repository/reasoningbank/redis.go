package reasoningbank

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/rueidis"

	"github.com/reelrank/reelrank/internal/domain/pattern"
)

// Redis storage layout: one list per (user, context), newest first, trimmed
// to listCap. Lists expire after retention to bound growth.
const (
	redisKeyPrefix = "reelrank:patterns:"
	listCap        = 200
	retention      = 30 * 24 * time.Hour
)

type storedRecord struct {
	ID               string             `json:"id"`
	UserID           string             `json:"user_id"`
	Context          string             `json:"context,omitempty"`
	DominantStrategy string             `json:"dominant_strategy"`
	Weights          map[string]float64 `json:"weights"`
	TopScore         float64            `json:"top_score"`
	CreatedAt        time.Time          `json:"created_at"`
}

// Redis is a rueidis-backed pattern store.
type Redis struct {
	client rueidis.Client
}

// NewRedis creates a Redis-backed reasoning bank.
func NewRedis(client rueidis.Client) *Redis {
	return &Redis{client: client}
}

func listKey(userID, contextKey string) string {
	return redisKeyPrefix + userID + ":" + contextKey
}

// StorePattern persists a record and returns its assigned id.
func (r *Redis) StorePattern(ctx context.Context, rec pattern.Record) (string, error) {
	rec.ID = uuid.NewString()

	data, err := json.Marshal(storedRecord(rec))
	if err != nil {
		return "", fmt.Errorf("marshal pattern: %w", err)
	}

	key := listKey(rec.UserID, rec.Context)
	cmds := []rueidis.Completed{
		r.client.B().Lpush().Key(key).Element(string(data)).Build(),
		r.client.B().Ltrim().Key(key).Start(0).Stop(listCap - 1).Build(),
		r.client.B().Expire().Key(key).Seconds(int64(retention.Seconds())).Build(),
	}
	for _, resp := range r.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return "", fmt.Errorf("store pattern: %w", err)
		}
	}

	return rec.ID, nil
}

// FindSimilarPatterns returns records for the query's user and context,
// newest first. Both fields are required for the Redis layout.
func (r *Redis) FindSimilarPatterns(ctx context.Context, q pattern.Query) ([]pattern.Record, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	cmd := r.client.B().Lrange().Key(listKey(q.UserID, q.Context)).Start(0).Stop(int64(limit - 1)).Build()
	raw, err := r.client.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find patterns: %w", err)
	}

	out := make([]pattern.Record, 0, len(raw))
	for _, item := range raw {
		var stored storedRecord
		if err := json.Unmarshal([]byte(item), &stored); err != nil {
			continue // skip corrupt entries
		}
		out = append(out, pattern.Record(stored))
	}
	return out, nil
}
