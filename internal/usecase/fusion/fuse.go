package fusion

import (
	"sort"

	"github.com/reelrank/reelrank/internal/domain/content"
	domfusion "github.com/reelrank/reelrank/internal/domain/fusion"
	"github.com/reelrank/reelrank/internal/domain/ranking"
)

// DefaultK is the Reciprocal Rank Fusion constant (standard value from
// Cormack et al. 2009). Larger k flattens the advantage of top ranks.
const DefaultK = 60

// Fuse merges per-strategy rankings into a single ordered list via weighted
// Reciprocal Rank Fusion: each item accumulates weight/(k+rank) from every
// strategy that ranked it. Fusion is rank-based, so strategies with
// incompatible score scales cannot dominate each other.
//
// weights is the registered strategy set; every fused result carries one
// contribution per key in weights, zero-filled when the strategy did not rank
// the item. Rankings for strategies absent from weights are ignored.
// Output order is (rrfScore desc, content key asc) and fully deterministic.
func Fuse(
	rankings map[string][]ranking.RankedItem,
	weights map[string]float64,
	k int,
) []domfusion.Result {
	if k <= 0 {
		k = DefaultK
	}

	type accumulator struct {
		key     content.Key
		score   float64
		byStrat map[string]domfusion.Contribution
	}

	merged := make(map[content.Key]*accumulator)

	for name, items := range rankings {
		weight, registered := weights[name]
		if !registered {
			continue
		}
		for _, item := range items {
			value := weight / float64(k+item.Rank())
			acc, ok := merged[item.Key()]
			if !ok {
				acc = &accumulator{
					key:     item.Key(),
					byStrat: make(map[string]domfusion.Contribution, len(weights)),
				}
				merged[item.Key()] = acc
			}
			acc.score += value
			acc.byStrat[name] = domfusion.NewContribution(name, weight, item.Rank(), value)
		}
	}

	// Stable strategy order for the contribution slices.
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]domfusion.Result, 0, len(merged))
	for _, acc := range merged {
		contributions := make([]domfusion.Contribution, 0, len(names))
		for _, name := range names {
			if c, ok := acc.byStrat[name]; ok {
				contributions = append(contributions, c)
			} else {
				contributions = append(contributions, domfusion.ZeroContribution(name, weights[name]))
			}
		}
		results = append(results, domfusion.NewResult(acc.key, acc.score, contributions))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score() != results[j].Score() {
			return results[i].Score() > results[j].Score()
		}
		return results[i].Key().Less(results[j].Key())
	})

	return results
}
