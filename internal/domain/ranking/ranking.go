package ranking

import (
	"fmt"

	"github.com/reelrank/reelrank/internal/domain/content"
)

// RankedItem is one strategy's judgment of one content item.
// Ranks are 1-based and dense within a single strategy's output. Scores are
// strategy-local in [0, 1] and never compared across strategies; fusion is
// rank-based for exactly that reason.
type RankedItem struct {
	key      content.Key
	rank     int
	score    float64
	strategy string
}

// New creates a single ranked item.
func New(key content.Key, rank int, score float64, strategy string) RankedItem {
	return RankedItem{key: key, rank: rank, score: score, strategy: strategy}
}

// Key returns the content identity.
func (r *RankedItem) Key() content.Key { return r.key }

// Rank returns the 1-based rank within the producing strategy's output.
func (r *RankedItem) Rank() int { return r.rank }

// Score returns the strategy-local relevance score.
func (r *RankedItem) Score() float64 { return r.score }

// Strategy returns the producing strategy's name.
func (r *RankedItem) Strategy() string { return r.strategy }

// Scored is an unranked candidate used to build a ranking.
type Scored struct {
	Key   content.Key
	Score float64
}

// FromScored assigns dense 1..N ranks to an already-ordered candidate list.
// The input must be sorted by descending relevance; this only attaches ranks.
func FromScored(strategy string, ordered []Scored) []RankedItem {
	items := make([]RankedItem, len(ordered))
	for i, s := range ordered {
		items[i] = New(s.Key, i+1, s.Score, strategy)
	}
	return items
}

// Validate checks rank density and score range of a strategy's output.
// Used by tests and diagnostics only; fusion itself tolerates any input.
func Validate(items []RankedItem) error {
	for i, item := range items {
		if item.rank != i+1 {
			return fmt.Errorf("rank at position %d is %d, want %d (ranks must be dense)", i, item.rank, i+1)
		}
		if item.score < 0 || item.score > 1 {
			return fmt.Errorf("score %f at rank %d outside [0, 1]", item.score, item.rank)
		}
	}
	return nil
}
