package strategy

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/reelrank/reelrank/internal/domain/content"
	"github.com/reelrank/reelrank/internal/domain/ranking"
	"github.com/reelrank/reelrank/internal/domain/viewing"
)

// ContextTemporalName is the registry key of the context-temporal strategy.
const ContextTemporalName = "context_temporal"

// Temporal defaults.
const (
	// DefaultContextCap bounds each per-context preference list,
	// most-recent-first eviction.
	DefaultContextCap = 20

	// temporalDecay is the per-position score decay; the most recently
	// reinforced item scores 1.0.
	temporalDecay = 0.85
)

type temporalEntry struct {
	key          content.Key
	reinforcedAt time.Time
}

// ContextTemporal learns per-context preference lists bucketed by
// time-of-day x weekend/weekday x device and serves their prefix scored by
// recency-decayed rank.
type ContextTemporal struct {
	cap           int
	defaultDevice viewing.Device
	now           func() time.Time

	mu    sync.RWMutex
	prefs map[string]map[string][]temporalEntry
}

// NewContextTemporal creates the context-temporal strategy.
// contextCap <= 0 selects the default cap of 20.
func NewContextTemporal(contextCap int) *ContextTemporal {
	if contextCap <= 0 {
		contextCap = DefaultContextCap
	}
	return &ContextTemporal{
		cap:           contextCap,
		defaultDevice: viewing.DeviceTV,
		now:           time.Now,
		prefs:         make(map[string]map[string][]temporalEntry),
	}
}

// Name returns the registry key.
func (s *ContextTemporal) Name() string { return ContextTemporalName }

// AddWatchEvent reinforces the watched item in the event's context bucket,
// moving it to the front. Duplicate events are idempotent. Each per-context
// list evicts from the tail once it exceeds the cap.
func (s *ContextTemporal) AddWatchEvent(e viewing.Event) {
	contextKey := e.ContextKey()

	s.mu.Lock()
	defer s.mu.Unlock()

	contexts, ok := s.prefs[e.UserID]
	if !ok {
		contexts = make(map[string][]temporalEntry)
		s.prefs[e.UserID] = contexts
	}

	entries := contexts[contextKey]
	for i, entry := range entries {
		if entry.key == e.Key {
			entries = append(entries[:i], entries[i+1:]...)
			break
		}
	}

	entries = append([]temporalEntry{{key: e.Key, reinforcedAt: e.WatchedAt}}, entries...)
	if len(entries) > s.cap {
		entries = entries[:s.cap]
	}
	contexts[contextKey] = entries
}

// GetRankings returns the prefix of the user's preference list for the
// current viewing context. The context bucket comes from the request context
// when set, otherwise it is derived from the clock and the default device.
// Unknown user or context yields an empty ranking.
func (s *ContextTemporal) GetRankings(ctx context.Context, userID string, limit int) ([]ranking.RankedItem, error) {
	contextKey, ok := viewing.FromContext(ctx)
	if !ok {
		contextKey = viewing.ContextKey(s.now(), s.defaultDevice)
	}

	s.mu.RLock()
	entries := s.prefs[userID][contextKey]
	if len(entries) > limit {
		entries = entries[:limit]
	}
	candidates := make([]ranking.Scored, len(entries))
	for i, entry := range entries {
		candidates[i] = ranking.Scored{
			Key:   entry.key,
			Score: math.Pow(temporalDecay, float64(i)),
		}
	}
	s.mu.RUnlock()

	return ranking.FromScored(ContextTemporalName, candidates), nil
}
