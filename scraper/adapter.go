package scraper

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"pricehound/config"
	"pricehound/models"
)

// ParseOptions carries the tunables the parse routine honors.
type ParseOptions struct {
	MaxItems        int
	MaxTitleLen     int
	PriceCeiling    float64
	TokenMatchRatio float64
	SimilarityFloor float64
}

// ParseListings turns a fetched body into listings for one platform. Platforms
// with an API config are parsed as JSON; everything else goes through the
// generic HTML selector pipeline. A listing is emitted only when both title
// and a valid price were extracted; partial items are dropped, never padded.
func ParseListings(body []byte, cfg config.PlatformConfig, query, searchURL string, opts ParseOptions) []models.Listing {
	if cfg.API != nil {
		return parseAPI(body, cfg, query, searchURL, opts)
	}
	return parseHTML(body, cfg, query, searchURL, opts)
}

func parseHTML(body []byte, cfg config.PlatformConfig, query, searchURL string, opts ParseOptions) []models.Listing {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		log.Printf("❌ %s: HTML parse failed: %v", cfg.Name, err)
		return nil
	}

	containers, set := FindContainers(doc, cfg, opts.MaxItems)
	if containers == nil {
		log.Printf("🔍 %s: no product containers matched", cfg.Name)
		return nil
	}
	log.Printf("🔍 %s: %d containers via %q", cfg.Name, containers.Length(), set.Container)

	var listings []models.Listing
	containers.Each(func(i int, container *goquery.Selection) {
		listing, err := parseContainer(container, cfg, set, query, searchURL, opts)
		if err != nil {
			// Per-item failures stay per-item; the rest of the page parses on.
			return
		}
		listings = append(listings, *listing)
	})

	log.Printf("✅ %s: %d listings for %q", cfg.Name, len(listings), query)
	return listings
}

func parseContainer(container *goquery.Selection, cfg config.PlatformConfig, set *config.SelectorSet, query, searchURL string, opts ParseOptions) (*models.Listing, error) {
	title := fieldText(container, set.Title)
	if title == "" {
		return nil, fmt.Errorf("no title")
	}
	title = truncateTitle(title, opts.MaxTitleLen)

	if !IsRelevant(query, title, opts.TokenMatchRatio, opts.SimilarityFloor) {
		return nil, fmt.Errorf("irrelevant title")
	}

	price := NormalizePrice(fieldText(container, set.Price), opts.PriceCeiling)
	if price == 0 {
		return nil, fmt.Errorf("no valid price")
	}

	link := searchURL
	if len(set.Link) > 0 {
		if href := fieldAttr(container, set.Link, "href"); href != "" {
			link = resolveURL(href, cfg.BaseURL, searchURL)
		}
	}

	image := ""
	if len(set.Image) > 0 {
		image = fieldAttr(container, set.Image, "src", "data-src", "data-lazy-src", "srcset")
	}

	return &models.Listing{
		Title:    title,
		Price:    price,
		Platform: cfg.Name,
		URL:      link,
		Image:    image,
		Source:   models.SourceScraped,
	}, nil
}

// parseAPI maps a JSON search response straight onto listings using the
// platform's configured gjson paths.
func parseAPI(body []byte, cfg config.PlatformConfig, query, searchURL string, opts ParseOptions) []models.Listing {
	payload := string(body)
	if !gjson.Valid(payload) {
		log.Printf("❌ %s: response is not valid JSON", cfg.Name)
		return nil
	}

	items := gjson.Get(payload, cfg.API.ItemsPath).Array()
	if opts.MaxItems > 0 && len(items) > opts.MaxItems {
		items = items[:opts.MaxItems]
	}

	var listings []models.Listing
	for _, item := range items {
		title := strings.TrimSpace(item.Get(cfg.API.TitlePath).String())
		if title == "" {
			continue
		}
		title = truncateTitle(title, opts.MaxTitleLen)
		if !IsRelevant(query, title, opts.TokenMatchRatio, opts.SimilarityFloor) {
			continue
		}

		price := NormalizePrice(item.Get(cfg.API.PricePath).String(), opts.PriceCeiling)
		if price == 0 {
			continue
		}

		link := searchURL
		if cfg.API.LinkPath != "" {
			if raw := item.Get(cfg.API.LinkPath).String(); raw != "" {
				link = resolveURL(raw, cfg.BaseURL, searchURL)
			}
		}

		image := ""
		if cfg.API.ImagePath != "" {
			image = item.Get(cfg.API.ImagePath).String()
		}

		listings = append(listings, models.Listing{
			Title:    title,
			Price:    price,
			Platform: cfg.Name,
			URL:      link,
			Image:    image,
			Source:   models.SourceScraped,
		})
	}

	log.Printf("✅ %s: %d listings for %q (api)", cfg.Name, len(listings), query)
	return listings
}

// resolveURL makes an extracted link absolute. Site-relative links resolve
// against the platform base URL; anything unusable falls back to the
// search-results URL.
func resolveURL(href, baseURL, searchURL string) string {
	switch {
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "/"):
		return strings.TrimSuffix(baseURL, "/") + href
	default:
		return searchURL
	}
}

func truncateTitle(title string, maxLen int) string {
	if maxLen > 0 && len(title) > maxLen {
		return title[:maxLen]
	}
	return title
}
