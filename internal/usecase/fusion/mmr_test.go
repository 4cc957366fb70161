package fusion

import (
	"testing"

	"github.com/reelrank/reelrank/internal/domain/content"
	domfusion "github.com/reelrank/reelrank/internal/domain/fusion"
)

func fusedResult(id string, score float64) domfusion.Result {
	return domfusion.NewResult(movieKey(id), score, nil)
}

func TestRerank_NoEmbeddingsNoOp(t *testing.T) {
	results := []domfusion.Result{
		fusedResult("a", 0.9),
		fusedResult("b", 0.8),
		fusedResult("c", 0.7),
	}

	reranked := Rerank(results, func(content.Key) ([]float64, bool) { return nil, false }, DefaultLambda)

	if len(reranked) != len(results) {
		t.Fatalf("length changed: %d -> %d", len(results), len(reranked))
	}
	for i := range results {
		if reranked[i].Key() != results[i].Key() {
			t.Errorf("order changed at %d without embeddings", i)
		}
	}
}

func TestRerank_PartialEmbeddingsNoOp(t *testing.T) {
	results := []domfusion.Result{
		fusedResult("a", 0.9),
		fusedResult("b", 0.8),
	}
	vectors := map[string][]float64{"a": {1, 0}}

	reranked := Rerank(results, func(k content.Key) ([]float64, bool) {
		v, ok := vectors[k.ID]
		return v, ok
	}, DefaultLambda)

	for i := range results {
		if reranked[i].Key() != results[i].Key() {
			t.Fatal("order changed although embedding coverage is partial")
		}
	}
}

func TestRerank_PenalizesRedundancy(t *testing.T) {
	// a and b are near-duplicates; c is distinct but slightly less relevant.
	// With a diversity term, c should displace b at position two.
	results := []domfusion.Result{
		fusedResult("a", 1.00),
		fusedResult("b", 0.95),
		fusedResult("c", 0.90),
	}
	vectors := map[string][]float64{
		"a": {1, 0},
		"b": {0.999, 0.04},
		"c": {0, 1},
	}
	embed := func(k content.Key) ([]float64, bool) {
		v, ok := vectors[k.ID]
		return v, ok
	}

	reranked := Rerank(results, embed, 0.5)

	got := []string{reranked[0].Key().ID, reranked[1].Key().ID, reranked[2].Key().ID}
	want := []string{"a", "c", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestRerank_HighLambdaKeepsRelevanceOrder(t *testing.T) {
	results := []domfusion.Result{
		fusedResult("a", 1.0),
		fusedResult("b", 0.5),
		fusedResult("c", 0.1),
	}
	vectors := map[string][]float64{
		"a": {1, 0},
		"b": {0, 1},
		"c": {0.7, 0.7},
	}
	embed := func(k content.Key) ([]float64, bool) {
		v, ok := vectors[k.ID]
		return v, ok
	}

	reranked := Rerank(results, embed, 0.99)
	for i, want := range []string{"a", "b", "c"} {
		if reranked[i].Key().ID != want {
			t.Errorf("position %d = %q, want %q", i, reranked[i].Key().ID, want)
		}
	}
}

func TestRerank_PreservesIdentity(t *testing.T) {
	contributions := []domfusion.Contribution{
		domfusion.NewContribution("a", 0.6, 1, 0.6/61),
	}
	results := []domfusion.Result{
		domfusion.NewResult(movieKey("x"), 0.6/61, contributions),
		domfusion.NewResult(movieKey("y"), 0.5/61, contributions),
	}
	embed := func(content.Key) ([]float64, bool) { return []float64{1, 0}, true }

	reranked := Rerank(results, embed, DefaultLambda)
	for i := range reranked {
		if len(reranked[i].Contributions()) != 1 {
			t.Errorf("contribution breakdown lost at %d", i)
		}
	}
}

func TestRerank_SingleItem(t *testing.T) {
	results := []domfusion.Result{fusedResult("a", 0.5)}
	reranked := Rerank(results, func(content.Key) ([]float64, bool) { return []float64{1}, true }, DefaultLambda)
	if len(reranked) != 1 || reranked[0].Key().ID != "a" {
		t.Fatal("single-item rerank altered the list")
	}
}
