package fusion

import (
	"github.com/reelrank/reelrank/internal/domain/content"
	domfusion "github.com/reelrank/reelrank/internal/domain/fusion"
	"github.com/reelrank/reelrank/internal/domain/vectormath"
)

// DefaultLambda biases Maximal Marginal Relevance toward relevance.
const DefaultLambda = 0.85

// EmbeddingLookup resolves a content embedding, reporting absence.
type EmbeddingLookup func(key content.Key) ([]float64, bool)

// Rerank applies Maximal Marginal Relevance over the fused list: it greedily
// picks the next item maximizing lambda*relevance - (1-lambda)*maxSimilarity
// to the already-selected set, where relevance is the RRF score normalized to
// [0, 1] and similarity is cosine over content embeddings.
//
// Result identity is preserved: items keep their scores and contribution
// breakdowns, only the order changes. If any candidate lacks an embedding the
// re-ranker degrades to a no-op and returns the input order unchanged.
func Rerank(results []domfusion.Result, embed EmbeddingLookup, lambda float64) []domfusion.Result {
	if len(results) < 2 || embed == nil {
		return results
	}
	if lambda <= 0 || lambda > 1 {
		lambda = DefaultLambda
	}

	vectors := make([][]float64, len(results))
	for i := range results {
		vec, ok := embed(results[i].Key())
		if !ok || len(vec) == 0 {
			return results
		}
		vectors[i] = vec
	}

	maxScore := results[0].Score()
	for i := range results {
		if results[i].Score() > maxScore {
			maxScore = results[i].Score()
		}
	}
	if maxScore == 0 {
		return results
	}

	remaining := make([]int, len(results))
	for i := range remaining {
		remaining[i] = i
	}

	reranked := make([]domfusion.Result, 0, len(results))
	var selected []int

	for len(remaining) > 0 {
		bestPos := 0
		bestValue := mmrValue(results, vectors, selected, remaining[0], maxScore, lambda)
		for pos := 1; pos < len(remaining); pos++ {
			if v := mmrValue(results, vectors, selected, remaining[pos], maxScore, lambda); v > bestValue {
				bestValue = v
				bestPos = pos
			}
		}

		idx := remaining[bestPos]
		reranked = append(reranked, results[idx])
		selected = append(selected, idx)
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}

	return reranked
}

func mmrValue(
	results []domfusion.Result, vectors [][]float64,
	selected []int, candidate int, maxScore, lambda float64,
) float64 {
	relevance := results[candidate].Score() / maxScore

	maxSim := 0.0
	for _, s := range selected {
		if sim := vectormath.Cosine(vectors[candidate], vectors[s]); sim > maxSim {
			maxSim = sim
		}
	}

	return lambda*relevance - (1-lambda)*maxSim
}
