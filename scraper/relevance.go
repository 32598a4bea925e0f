package scraper

import (
	"strings"

	"github.com/agext/levenshtein"

	"pricehound/config"
)

// IsRelevant decides whether an extracted listing title is plausibly about
// the queried product and not just any item scraped off the results page.
//
// Query tokens shorter than 3 characters and stop words are dropped first.
// If nothing meaningful remains the title is accepted unconditionally. The
// thresholds are tunable configuration, not derived constants.
func IsRelevant(query, title string, tokenMatchRatio, similarityFloor float64) bool {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	titleLower := strings.ToLower(title)

	var tokens []string
	for _, tok := range strings.Fields(queryLower) {
		if len(tok) < 3 || config.QueryStopWords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 {
		return true
	}

	matched := 0
	for _, tok := range tokens {
		if strings.Contains(titleLower, tok) {
			matched++
		}
	}
	matchRatio := float64(matched) / float64(len(tokens))
	if matchRatio >= tokenMatchRatio {
		return true
	}

	similarity := levenshtein.Match(queryLower, titleLower, nil)
	return similarity >= similarityFloor
}
