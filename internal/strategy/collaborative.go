// Package strategy holds the built-in ranking strategies consumed by the
// fusion orchestrator. Each strategy owns its internal caches; mutators
// invalidate exactly the keys they affect.
package strategy

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/reelrank/reelrank/internal/domain/content"
	"github.com/reelrank/reelrank/internal/domain/ranking"
	"github.com/reelrank/reelrank/internal/domain/viewing"
)

// CollaborativeName is the registry key of the collaborative strategy.
const CollaborativeName = "collaborative"

type neighbor struct {
	userID     string
	similarity float64
}

// Collaborative ranks unwatched content by aggregating Jaccard similarity of
// watch-history sets between the target user and everyone else.
type Collaborative struct {
	logger *zap.Logger

	mu      sync.RWMutex
	watched map[string]map[content.Key]struct{}

	// Per-user neighbor cache, invalidated by a watch event for that user.
	simMu     sync.RWMutex
	neighbors map[string][]neighbor
}

// NewCollaborative creates the collaborative filtering strategy.
func NewCollaborative(logger *zap.Logger) *Collaborative {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collaborative{
		logger:    logger,
		watched:   make(map[string]map[content.Key]struct{}),
		neighbors: make(map[string][]neighbor),
	}
}

// Name returns the registry key.
func (c *Collaborative) Name() string { return CollaborativeName }

// AddWatchEvent records a watch event. Duplicate events are idempotent.
// Invalidates the event user's cached neighbor similarities.
func (c *Collaborative) AddWatchEvent(e viewing.Event) {
	c.mu.Lock()
	set, ok := c.watched[e.UserID]
	if !ok {
		set = make(map[content.Key]struct{})
		c.watched[e.UserID] = set
	}
	set[e.Key] = struct{}{}
	c.mu.Unlock()

	c.simMu.Lock()
	delete(c.neighbors, e.UserID)
	c.simMu.Unlock()
}

// GetRankings returns up to limit unwatched items ordered by aggregated
// neighbor similarity. A user with no history yields an empty ranking.
func (c *Collaborative) GetRankings(ctx context.Context, userID string, limit int) ([]ranking.RankedItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	history := c.watched[userID]
	if len(history) == 0 {
		c.mu.RUnlock()
		return nil, nil
	}

	neighbors := c.cachedNeighbors(userID)
	if neighbors == nil {
		neighbors = c.computeNeighborsLocked(userID, history)
		c.storeNeighbors(userID, neighbors)
	}

	// Aggregate similarity mass over unwatched candidates.
	scores := make(map[content.Key]float64)
	for _, n := range neighbors {
		for key := range c.watched[n.userID] {
			if _, seen := history[key]; seen {
				continue
			}
			scores[key] += n.similarity
		}
	}
	c.mu.RUnlock()

	if len(scores) == 0 {
		return nil, nil
	}

	norm := float64(len(neighbors))
	candidates := make([]ranking.Scored, 0, len(scores))
	maxScore := 0.0
	for key, score := range scores {
		normalized := score / norm
		if normalized > maxScore {
			maxScore = normalized
		}
		candidates = append(candidates, ranking.Scored{Key: key, Score: normalized})
	}
	if maxScore > 0 {
		for i := range candidates {
			candidates[i].Score /= maxScore
		}
	}

	sortScored(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return ranking.FromScored(CollaborativeName, candidates), nil
}

func (c *Collaborative) cachedNeighbors(userID string) []neighbor {
	c.simMu.RLock()
	defer c.simMu.RUnlock()
	return c.neighbors[userID]
}

func (c *Collaborative) storeNeighbors(userID string, n []neighbor) {
	c.simMu.Lock()
	c.neighbors[userID] = n
	c.simMu.Unlock()
}

// computeNeighborsLocked requires c.mu to be held for reading.
func (c *Collaborative) computeNeighborsLocked(userID string, history map[content.Key]struct{}) []neighbor {
	neighbors := make([]neighbor, 0, len(c.watched))
	for other, otherHistory := range c.watched {
		if other == userID || len(otherHistory) == 0 {
			continue
		}
		if sim := jaccard(history, otherHistory); sim > 0 {
			neighbors = append(neighbors, neighbor{userID: other, similarity: sim})
		}
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].similarity != neighbors[j].similarity {
			return neighbors[i].similarity > neighbors[j].similarity
		}
		return neighbors[i].userID < neighbors[j].userID
	})
	return neighbors
}

// jaccard computes |a∩b| / |a∪b| over two watch-history sets.
func jaccard(a, b map[content.Key]struct{}) float64 {
	smaller, larger := a, b
	if len(b) < len(a) {
		smaller, larger = b, a
	}
	intersection := 0
	for key := range smaller {
		if _, ok := larger[key]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// sortScored orders candidates by score descending, content key ascending.
func sortScored(candidates []ranking.Scored) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Key.Less(candidates[j].Key)
	})
}
