package models

import "time"

// Category is the coarse product category used to pick platforms for a query.
type Category string

const (
	CategoryGrocery     Category = "grocery"
	CategoryElectronics Category = "electronics"
	CategoryFashion     Category = "fashion"
	CategoryGeneral     Category = "general"
)

// Listing represents one extracted product offer.
type Listing struct {
	Title      string  `json:"title"`
	Price      float64 `json:"price"`
	Platform   string  `json:"platform"`
	URL        string  `json:"url"`
	Image      string  `json:"image,omitempty"`
	Source     string  `json:"source"` // "scraped"; the core never fabricates listings
	IsCheapest bool    `json:"is_cheapest,omitempty"`
}

// SourceScraped marks a listing that came from real upstream data.
const SourceScraped = "scraped"

// SearchResult is the merged, price-sorted outcome of one search across
// platforms. Zero products is a valid outcome, not an error: flaky upstream
// sites are expected to come back empty.
type SearchResult struct {
	Success              bool      `json:"success"`
	Products             []Listing `json:"products"`
	ProductSearched      string    `json:"product_searched"`
	Category             string    `json:"category"`
	PlatformsSearched    []string  `json:"platforms_searched"`
	PlatformsWithResults []string  `json:"platforms_with_results"`
	TotalResults         int       `json:"total_results"`
	Cheapest             *Listing  `json:"cheapest"`
	ScrapingTime         float64   `json:"scraping_time"`
	Timestamp            int64     `json:"timestamp"`
	Errors               []string  `json:"errors,omitempty"`
}

// NewSearchResult builds the result envelope for a finished search. The
// products slice must already be price-sorted with the cheapest flagged.
func NewSearchResult(query string, category Category, searched []string, products []Listing, errors []string, elapsed time.Duration) *SearchResult {
	withResults := make([]string, 0)
	seen := make(map[string]bool)
	for _, p := range products {
		if !seen[p.Platform] {
			seen[p.Platform] = true
			withResults = append(withResults, p.Platform)
		}
	}

	var cheapest *Listing
	if len(products) > 0 {
		cheapest = &products[0]
	}

	return &SearchResult{
		Success:              len(products) > 0,
		Products:             products,
		ProductSearched:      query,
		Category:             string(category),
		PlatformsSearched:    searched,
		PlatformsWithResults: withResults,
		TotalResults:         len(products),
		Cheapest:             cheapest,
		ScrapingTime:         float64(int(elapsed.Seconds()*100)) / 100,
		Timestamp:            time.Now().Unix(),
		Errors:               errors,
	}
}

// ScrapeRequest is the body of POST /scrape/prices/.
type ScrapeRequest struct {
	ProductName string   `json:"product_name"`
	Platforms   []string `json:"platforms,omitempty"`
}

// QueryRequest is the body of POST /query/price/.
type QueryRequest struct {
	Query string `json:"query"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
