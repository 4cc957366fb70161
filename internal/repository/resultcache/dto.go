package resultcache

import (
	"github.com/reelrank/reelrank/internal/domain/content"
	"github.com/reelrank/reelrank/internal/domain/fusion"
	"github.com/reelrank/reelrank/internal/domain/recommendation"
)

// Storage DTOs for the Redis cache. Domain types keep their fields
// unexported, so round-tripping goes through these.

type cachedContent struct {
	ID         string   `json:"id"`
	MediaType  string   `json:"media_type"`
	Title      string   `json:"title"`
	Genres     []string `json:"genres,omitempty"`
	Year       int      `json:"year,omitempty"`
	Popularity float64  `json:"popularity,omitempty"`
	Overview   string   `json:"overview,omitempty"`
}

type cachedContribution struct {
	Strategy string  `json:"strategy"`
	Weight   float64 `json:"weight"`
	Rank     *int    `json:"rank"`
	Value    float64 `json:"contribution"`
}

type cachedRecommendation struct {
	Content       cachedContent        `json:"content"`
	FinalScore    float64              `json:"final_score"`
	Contributions []cachedContribution `json:"strategy_contributions"`
	Reasoning     string               `json:"reasoning"`
}

func toCached(recs []recommendation.Recommendation) []cachedRecommendation {
	out := make([]cachedRecommendation, len(recs))
	for i := range recs {
		rec := &recs[i]
		c := rec.Content()

		contributions := make([]cachedContribution, 0, len(rec.Contributions()))
		for _, contrib := range rec.Contributions() {
			dto := cachedContribution{
				Strategy: contrib.Strategy(),
				Weight:   contrib.Weight(),
				Value:    contrib.Value(),
			}
			if rank, ranked := contrib.Rank(); ranked {
				dto.Rank = &rank
			}
			contributions = append(contributions, dto)
		}

		out[i] = cachedRecommendation{
			Content: cachedContent{
				ID:         c.Key().ID,
				MediaType:  string(c.Key().MediaType),
				Title:      c.Title(),
				Genres:     c.Genres(),
				Year:       c.Year(),
				Popularity: c.Popularity(),
				Overview:   c.Overview(),
			},
			FinalScore:    rec.FinalScore(),
			Contributions: contributions,
			Reasoning:     rec.Reasoning(),
		}
	}
	return out
}

func fromCached(cached []cachedRecommendation) []recommendation.Recommendation {
	out := make([]recommendation.Recommendation, len(cached))
	for i, dto := range cached {
		key := content.Key{ID: dto.Content.ID, MediaType: content.MediaType(dto.Content.MediaType)}
		c := content.New(
			key, dto.Content.Title, dto.Content.Genres,
			dto.Content.Year, dto.Content.Popularity, dto.Content.Overview,
		)

		contributions := make([]fusion.Contribution, 0, len(dto.Contributions))
		for _, cc := range dto.Contributions {
			if cc.Rank != nil {
				contributions = append(contributions,
					fusion.NewContribution(cc.Strategy, cc.Weight, *cc.Rank, cc.Value))
			} else {
				contributions = append(contributions,
					fusion.ZeroContribution(cc.Strategy, cc.Weight))
			}
		}

		out[i] = recommendation.New(c, dto.FinalScore, contributions, dto.Reasoning)
	}
	return out
}
