package recommend

import (
	"unicode"

	domfusion "github.com/reelrank/reelrank/internal/domain/fusion"
)

// secondaryShare is the fraction of the fused score a second strategy must
// exceed to earn a mention in the reasoning sentence.
const secondaryShare = 0.2

var primaryPhrases = map[string]string{
	"collaborative":      "people with similar taste watched this",
	"content_similarity": "it closely matches titles you enjoy",
	"trending":           "it is trending with viewers right now",
	"context_temporal":   "it fits what you usually watch around this time",
}

var secondaryPhrases = map[string]string{
	"collaborative":      "viewers like you rate it highly",
	"content_similarity": "it resembles your favorites",
	"trending":           "it is popular right now",
	"context_temporal":   "it suits this time slot",
}

const fallbackReason = "It is broadly popular with the audience right now."

// buildReasoning renders one fused result as a single reasoning sentence:
// the dominant strategy's phrase, extended with a secondary phrase when a
// second strategy carries a meaningful share of the score.
func buildReasoning(res *domfusion.Result) string {
	dominant, ok := res.Dominant()
	if !ok || res.Score() <= 0 {
		return fallbackReason
	}
	primary, known := primaryPhrases[dominant.Strategy()]
	if !known {
		return fallbackReason
	}

	sentence := primary
	if second, ok := secondaryContribution(res, dominant.Strategy()); ok {
		if phrase, known := secondaryPhrases[second.Strategy()]; known {
			sentence += ", and " + phrase
		}
	}
	return capitalize(sentence) + "."
}

// secondaryContribution picks the strongest non-dominant contribution that
// exceeds secondaryShare of the fused score.
func secondaryContribution(res *domfusion.Result, primary string) (domfusion.Contribution, bool) {
	var best domfusion.Contribution
	found := false
	for _, c := range res.Contributions() {
		if c.Strategy() == primary || c.Value() <= 0 {
			continue
		}
		if !found || c.Value() > best.Value() {
			best = c
			found = true
		}
	}
	if !found || best.Value() <= secondaryShare*res.Score() {
		return domfusion.Contribution{}, false
	}
	return best, true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
