package fusion

import "github.com/reelrank/reelrank/internal/domain/content"

// Contribution is one strategy's share of an item's fused score.
// Rank is zero when the strategy did not rank the item; every fused result
// carries one contribution per registered strategy regardless.
type Contribution struct {
	strategy     string
	weight       float64
	rank         int
	contribution float64
}

// NewContribution creates a ranked contribution.
func NewContribution(strategy string, weight float64, rank int, value float64) Contribution {
	return Contribution{strategy: strategy, weight: weight, rank: rank, contribution: value}
}

// ZeroContribution creates the zero-fill entry for a strategy that did not
// rank the item.
func ZeroContribution(strategy string, weight float64) Contribution {
	return Contribution{strategy: strategy, weight: weight}
}

// Strategy returns the contributing strategy's name.
func (c *Contribution) Strategy() string { return c.strategy }

// Weight returns the strategy's fusion weight at contribution time.
func (c *Contribution) Weight() float64 { return c.weight }

// Rank returns the strategy-local rank and whether the strategy ranked the item.
func (c *Contribution) Rank() (int, bool) { return c.rank, c.rank > 0 }

// Value returns the RRF contribution, weight/(k+rank), or zero if unranked.
func (c *Contribution) Value() float64 { return c.contribution }

// Result aggregates all strategies' judgments for one content item.
type Result struct {
	key           content.Key
	rrfScore      float64
	contributions []Contribution
}

// NewResult creates a fused result.
func NewResult(key content.Key, rrfScore float64, contributions []Contribution) Result {
	return Result{key: key, rrfScore: rrfScore, contributions: contributions}
}

// Key returns the content identity.
func (r *Result) Key() content.Key { return r.key }

// Score returns the fused RRF score.
func (r *Result) Score() float64 { return r.rrfScore }

// Contributions returns the per-strategy breakdown, one entry per strategy
// registered at fusion time.
func (r *Result) Contributions() []Contribution { return r.contributions }

// Dominant returns the contribution with the largest positive value.
// The second return is false when no contribution is positive.
func (r *Result) Dominant() (Contribution, bool) {
	var best Contribution
	found := false
	for _, c := range r.contributions {
		if c.contribution > 0 && (!found || c.contribution > best.contribution) {
			best = c
			found = true
		}
	}
	return best, found
}
