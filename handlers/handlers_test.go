package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pricehound/config"
	"pricehound/models"
)

// fakeSearcher returns a canned result and records what it was asked.
type fakeSearcher struct {
	result       *models.SearchResult
	gotQuery     string
	gotPlatforms []string
	calls        int
}

func (f *fakeSearcher) Search(ctx context.Context, query string, platforms []string) *models.SearchResult {
	f.calls++
	f.gotQuery = query
	f.gotPlatforms = platforms
	if f.result != nil {
		return f.result
	}
	return models.NewSearchResult(query, models.CategoryGeneral, []string{"amazon"}, []models.Listing{}, nil, time.Second)
}

func newTestHandlers(searcher Searcher) *Handlers {
	return NewHandlers(&config.ScraperConfig{}, searcher, nil)
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestScrapePricesValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"missing product_name", `{}`},
		{"empty product_name", `{"product_name": ""}`},
		{"whitespace product_name", `{"product_name": "   "}`},
		{"too long", `{"product_name": "` + strings.Repeat("x", 101) + `"}`},
	}

	for _, tt := range tests {
		searcher := &fakeSearcher{}
		h := newTestHandlers(searcher)
		rec := postJSON(t, h.ScrapePrices, "/scrape/prices/", tt.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d; want 400", tt.name, rec.Code)
		}
		if searcher.calls != 0 {
			t.Errorf("%s: searcher invoked on invalid input", tt.name)
		}

		var errResp models.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
			t.Fatalf("%s: error body not JSON: %v", tt.name, err)
		}
		if errResp.Success {
			t.Errorf("%s: error response has success=true", tt.name)
		}
	}
}

func TestScrapePricesZeroResultsIs200(t *testing.T) {
	searcher := &fakeSearcher{}
	h := newTestHandlers(searcher)

	rec := postJSON(t, h.ScrapePrices, "/scrape/prices/", `{"product_name": "milk"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200 for zero results", rec.Code)
	}

	var result models.SearchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Error("success = true with zero products")
	}
	if result.Products == nil || len(result.Products) != 0 {
		t.Errorf("products = %v; want []", result.Products)
	}
	if result.Cheapest != nil {
		t.Errorf("cheapest = %+v; want null", result.Cheapest)
	}
}

func TestScrapePricesForwardsPlatforms(t *testing.T) {
	searcher := &fakeSearcher{}
	h := newTestHandlers(searcher)

	postJSON(t, h.ScrapePrices, "/scrape/prices/", `{"product_name": "milk", "platforms": ["amazon", "zepto"]}`)

	if searcher.gotQuery != "milk" {
		t.Errorf("query = %q", searcher.gotQuery)
	}
	if len(searcher.gotPlatforms) != 2 || searcher.gotPlatforms[0] != "amazon" {
		t.Errorf("platforms = %v", searcher.gotPlatforms)
	}
}

func TestQueryPriceValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"empty query", `{"query": ""}`},
		{"too long", `{"query": "` + strings.Repeat("x", 201) + `"}`},
		{"stop words only", `{"query": "what is the best price"}`},
	}

	for _, tt := range tests {
		searcher := &fakeSearcher{}
		h := newTestHandlers(searcher)
		rec := postJSON(t, h.QueryPrice, "/query/price/", tt.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d; want 400", tt.name, rec.Code)
		}
	}
}

func TestQueryPriceExtractsProduct(t *testing.T) {
	searcher := &fakeSearcher{}
	h := newTestHandlers(searcher)

	rec := postJSON(t, h.QueryPrice, "/query/price/", `{"query": "what is the price of amul milk?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if searcher.gotQuery != "amul milk" {
		t.Errorf("extracted product = %q; want %q", searcher.gotQuery, "amul milk")
	}
}

func TestExtractProductName(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"price of iphone 15", "iphone 15"},
		{"how much is a macbook air", "macbook air"},
		{"find me the cheapest amul milk", "amul milk"},
		{"samsung tv", "samsung tv"},
		{"what is the cost of onions?", "onions"},
		{"best deal on nike shoes please", "nike shoes"},
	}

	for _, tt := range tests {
		got := ExtractProductName(tt.query)
		if got != tt.want {
			t.Errorf("ExtractProductName(%q) = %q; want %q", tt.query, got, tt.want)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandlers(&fakeSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v", body["status"])
	}
	if _, ok := body["config"]; !ok {
		t.Error("config flags missing from health response")
	}
}

func TestPlatformsEndpoint(t *testing.T) {
	h := newTestHandlers(&fakeSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/platforms", nil)
	rec := httptest.NewRecorder()
	h.Platforms(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	var body struct {
		Success   bool `json:"success"`
		Platforms []struct {
			Key  string `json:"key"`
			Name string `json:"name"`
		} `json:"platforms"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.Total == 0 || len(body.Platforms) != body.Total {
		t.Errorf("unexpected platform catalog: %+v", body)
	}
}

func TestOptionsPreflight(t *testing.T) {
	h := newTestHandlers(&fakeSearcher{})

	req := httptest.NewRequest(http.MethodOptions, "/scrape/prices/", nil)
	rec := httptest.NewRecorder()
	h.Options(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d; want 204", rec.Code)
	}
}
