package scraper

import (
	"log"
	"strings"

	"pricehound/config"
	"pricehound/models"
)

const wholeTokenScore = 10
const substringScore = 5

// Classify maps a free-text query to a coarse product category. Pure function
// over the static keyword tables: same input, same category, always.
func Classify(query string) models.Category {
	cleaned := cleanQuery(query)
	if cleaned == "" {
		return models.CategoryGeneral
	}
	tokens := map[string]bool{}
	for _, tok := range strings.Fields(cleaned) {
		tokens[tok] = true
	}

	scores := map[models.Category]int{}
	for category, keywords := range config.CategoryKeywords {
		for _, kw := range keywords {
			if tokens[kw] {
				scores[category] += wholeTokenScore
			} else if strings.Contains(cleaned, kw) {
				scores[category] += substringScore
			}
		}
	}

	// Highest nonzero score wins; ties resolve by the fixed priority order.
	best := models.CategoryGeneral
	bestScore := 0
	for _, category := range config.CategoryPriority {
		if scores[category] > bestScore {
			best = category
			bestScore = scores[category]
		}
	}
	return best
}

// cleanQuery lower-cases the query and drops stop words.
func cleanQuery(query string) string {
	var kept []string
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		if config.QueryStopWords[tok] {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// SelectPlatforms returns the platform keys to query for a category, in
// priority order.
func SelectPlatforms(category models.Category) []string {
	keys, ok := config.CategoryPlatforms[category]
	if !ok {
		return config.CategoryPlatforms[models.CategoryGeneral]
	}
	return keys
}

// ResolvePlatforms turns a query plus an optional caller-supplied override
// into the final platform set, capped at maxPlatforms. Unknown keys in the
// override are skipped rather than failing the request; an override that
// validates to empty falls back to the classifier's choice.
func ResolvePlatforms(query string, requested []string, maxPlatforms int) ([]config.PlatformConfig, models.Category) {
	category := Classify(query)

	keys := make([]string, 0)
	if len(requested) > 0 {
		for _, key := range requested {
			if _, ok := config.Get(key); !ok {
				log.Printf("⚠️ Unknown platform key %q requested, skipping", key)
				continue
			}
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		keys = SelectPlatforms(category)
	}

	if maxPlatforms > 0 && len(keys) > maxPlatforms {
		keys = keys[:maxPlatforms]
	}

	configs := make([]config.PlatformConfig, 0, len(keys))
	for _, key := range keys {
		cfg, _ := config.Get(key)
		configs = append(configs, cfg)
	}
	return configs, category
}
