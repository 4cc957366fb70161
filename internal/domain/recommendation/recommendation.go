package recommendation

import (
	"github.com/reelrank/reelrank/internal/domain/content"
	"github.com/reelrank/reelrank/internal/domain/fusion"
)

// Recommendation is the user-facing final artifact: a hydrated content record
// with its fused score, per-strategy breakdown, and generated reasoning.
type Recommendation struct {
	content       content.Content
	finalScore    float64
	contributions []fusion.Contribution
	reasoning     string
}

// New creates a recommendation.
func New(c content.Content, finalScore float64, contributions []fusion.Contribution, reasoning string) Recommendation {
	return Recommendation{
		content:       c,
		finalScore:    finalScore,
		contributions: contributions,
		reasoning:     reasoning,
	}
}

// Content returns the hydrated catalog record.
func (r *Recommendation) Content() content.Content { return r.content }

// FinalScore returns the fused RRF score.
func (r *Recommendation) FinalScore() float64 { return r.finalScore }

// Contributions returns the per-strategy score breakdown.
func (r *Recommendation) Contributions() []fusion.Contribution { return r.contributions }

// Reasoning returns the generated explanation sentence.
func (r *Recommendation) Reasoning() string { return r.reasoning }

// CacheStatistics reports result-cache effectiveness.
type CacheStatistics struct {
	Hits    int64
	Misses  int64
	Entries int64
}

// Stats summarizes how one request was served. Diagnostic only.
type Stats struct {
	StrategiesRun    int
	StrategiesFailed int
	Candidates       int
	HydrationDrops   int
	CacheHit         bool
}
