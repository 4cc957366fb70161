// Package reelrank fuses multiple recommendation strategies into a single
// ranked, explained result list.
//
// Four built-in strategies (collaborative filtering, content similarity,
// trending, and context-temporal) rank candidates concurrently; their
// outputs are merged with Reciprocal Rank Fusion and optionally re-ranked
// for diversity with Maximal Marginal Relevance. Each returned item carries
// a per-strategy score breakdown and a human-readable reasoning sentence.
//
// Minimal use:
//
//	engine, err := reelrank.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	engine.AddContent(reelrank.Content{ID: "603", MediaType: "movie", Title: "The Matrix"})
//	engine.AddWatchEvent(reelrank.WatchEvent{UserID: "u1", ContentID: "603", MediaType: "movie", Device: "tv"})
//	recs, err := engine.GetHybridRecommendations(ctx, "u1", 10)
//
// Strategy failures and cache trouble degrade the result instead of failing
// the request; only invalid input returns an error.
package reelrank
