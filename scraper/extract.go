package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"pricehound/config"
)

// ExtractField tries each selector against the container in order and returns
// the first non-empty match. A malformed selector is treated as no-match and
// skipped; a single bad selector must never abort a whole listing.
func ExtractField(container *goquery.Selection, selectors []string) *goquery.Selection {
	for _, raw := range selectors {
		sel, err := cascadia.Compile(raw)
		if err != nil {
			continue
		}
		match := container.FindMatcher(sel).First()
		if match.Length() == 0 {
			continue
		}
		return match
	}
	return nil
}

// FindContainers discovers product containers using the platform's selector
// sets. Sets are tried in priority order and the first set yielding at least
// one container wins outright; later sets are never tried, even if they might
// match more listings. Speed over max-recall, on purpose.
func FindContainers(doc *goquery.Document, cfg config.PlatformConfig, maxItems int) (*goquery.Selection, *config.SelectorSet) {
	for i := range cfg.SelectorSets {
		set := &cfg.SelectorSets[i]
		sel, err := cascadia.Compile(set.Container)
		if err != nil {
			continue
		}
		containers := doc.FindMatcher(sel)
		if containers.Length() == 0 {
			continue
		}
		if maxItems > 0 && containers.Length() > maxItems {
			containers = containers.Slice(0, maxItems)
		}
		return containers, set
	}
	return nil, nil
}

// fieldText returns the trimmed text of the first selector match, or "".
func fieldText(container *goquery.Selection, selectors []string) string {
	match := ExtractField(container, selectors)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match.Text())
}

// fieldAttr returns the first non-empty attribute among attrs on the first
// selector match, or "".
func fieldAttr(container *goquery.Selection, selectors []string, attrs ...string) string {
	match := ExtractField(container, selectors)
	if match == nil {
		return ""
	}
	for _, attr := range attrs {
		if val, ok := match.Attr(attr); ok && strings.TrimSpace(val) != "" {
			return strings.TrimSpace(val)
		}
	}
	return ""
}
