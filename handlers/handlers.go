package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"strings"

	"pricehound/config"
	"pricehound/models"
	"pricehound/scheduler"
)

const (
	maxProductNameLen = 100
	maxQueryLen       = 200
)

// Searcher runs a product search across platforms.
type Searcher interface {
	Search(ctx context.Context, query string, platforms []string) *models.SearchResult
}

// Handlers holds dependencies for HTTP handlers
type Handlers struct {
	cfg      *config.ScraperConfig
	searcher Searcher
	probe    *scheduler.PlatformProbe
}

func NewHandlers(cfg *config.ScraperConfig, searcher Searcher, probe *scheduler.PlatformProbe) *Handlers {
	return &Handlers{
		cfg:      cfg,
		searcher: searcher,
		probe:    probe,
	}
}

// Root serves a small banner so the base URL answers something useful.
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "pricehound",
		"status":  "running",
		"version": "1.0.0",
		"message": "Multi-platform price comparison API",
		"endpoints": []string{
			"POST /scrape/prices/",
			"POST /query/price/",
			"GET /platforms",
			"GET /health",
		},
		"platforms": config.Keys(),
	})
}

// ScrapePrices handles POST /scrape/prices/ — the main search endpoint.
func (h *Handlers) ScrapePrices(w http.ResponseWriter, r *http.Request) {
	var req models.ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	productName := strings.TrimSpace(req.ProductName)
	if productName == "" {
		writeError(w, http.StatusBadRequest, "product_name is required")
		return
	}
	if len(productName) > maxProductNameLen {
		writeError(w, http.StatusBadRequest, "product_name too long")
		return
	}

	result := h.searcher.Search(r.Context(), productName, req.Platforms)
	writeJSON(w, http.StatusOK, result)
}

// Phrasings like "price of X" or "how much is X" that a voice assistant or
// chat frontend forwards verbatim.
var queryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)price\s+(?:of|for)\s+(.+)`),
	regexp.MustCompile(`(?i)how\s+much\s+(?:is|does|for)\s+(.+)`),
	regexp.MustCompile(`(?i)cost\s+of\s+(.+)`),
}

// QueryPrice handles POST /query/price/ — free-text queries. The query is
// reduced to a product name by pattern matching and stop-word stripping, then
// handed to the same search pipeline.
func (h *Handlers) QueryPrice(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if len(query) > maxQueryLen {
		writeError(w, http.StatusBadRequest, "query too long")
		return
	}

	productName := ExtractProductName(query)
	if productName == "" {
		writeError(w, http.StatusBadRequest, "could not extract a product from query")
		return
	}
	log.Printf("💬 Query %q → product %q", query, productName)

	result := h.searcher.Search(r.Context(), productName, nil)
	writeJSON(w, http.StatusOK, result)
}

// ExtractProductName reduces a free-text question to a product name. Pattern
// capture runs first; stop-word stripping cleans whatever remains.
func ExtractProductName(query string) string {
	text := query
	for _, pattern := range queryPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			text = m[1]
			break
		}
	}

	var kept []string
	for _, word := range strings.Fields(text) {
		trimmed := strings.Trim(strings.ToLower(word), "?!.,")
		if trimmed == "" || config.QueryStopWords[trimmed] {
			continue
		}
		kept = append(kept, strings.Trim(word, "?!.,"))
	}
	return strings.Join(kept, " ")
}

// Platforms handles GET /platforms — the supported platform catalog.
func (h *Handlers) Platforms(w http.ResponseWriter, r *http.Request) {
	type platformInfo struct {
		Key        string `json:"key"`
		Name       string `json:"name"`
		BaseURL    string `json:"base_url"`
		RequiresJS bool   `json:"requires_js"`
	}

	platforms := make([]platformInfo, 0, len(config.Platforms))
	for _, key := range config.Keys() {
		p, _ := config.Get(key)
		platforms = append(platforms, platformInfo{
			Key:        p.Key,
			Name:       p.Name,
			BaseURL:    p.BaseURL,
			RequiresJS: p.RequiresJS,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"platforms": platforms,
		"total":     len(platforms),
	})
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"service": "pricehound",
		"config": map[string]bool{
			"scraperapi_configured":  h.cfg.ScraperAPIKey != "",
			"scrapingbee_configured": h.cfg.ScrapingBeeKey != "",
			"browser_enabled":        h.cfg.BrowserEnabled,
			"cache_enabled":          h.cfg.CacheEnabled,
			"concurrent":             h.cfg.Concurrent,
		},
	}
	if h.probe != nil {
		response["platform_status"] = h.probe.Statuses()
	}
	writeJSON(w, http.StatusOK, response)
}

// Options answers CORS preflight for routes registered with explicit OPTIONS.
func (h *Handlers) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Success: false, Error: message})
}
