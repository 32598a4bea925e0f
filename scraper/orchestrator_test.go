package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"pricehound/config"
	"pricehound/models"
)

func testOrchestrator(t *testing.T, scrape scrapeFunc) *Orchestrator {
	t.Helper()
	o := NewOrchestrator(&config.ScraperConfig{
		Workers:         4,
		Concurrent:      true,
		PlatformTimeout: 5 * time.Second,
		MaxPlatforms:    6,
		DedupEnabled:    true,
	})
	o.scrape = scrape
	return o
}

func mockListings(platform string, prices ...float64) []models.Listing {
	listings := make([]models.Listing, 0, len(prices))
	for _, p := range prices {
		listings = append(listings, models.Listing{
			Title:    "Mock Item",
			Price:    p,
			Platform: platform,
			URL:      "https://example.test/item",
			Source:   models.SourceScraped,
		})
	}
	return listings
}

func TestSearchMergesAndSorts(t *testing.T) {
	o := testOrchestrator(t, func(ctx context.Context, platform config.PlatformConfig, query string) ([]models.Listing, error) {
		switch platform.Key {
		case "amazon":
			return mockListings(platform.Name, 120.0, 95.0), nil
		case "flipkart":
			return mockListings(platform.Name, 200.0), nil
		default:
			return nil, nil
		}
	})

	result := o.Search(context.Background(), "milk", []string{"amazon", "flipkart"})

	if len(result.Products) != 3 {
		t.Fatalf("got %d products; want 3", len(result.Products))
	}
	wantPrices := []float64{95, 120, 200}
	for i, want := range wantPrices {
		if result.Products[i].Price != want {
			t.Errorf("products[%d].Price = %.2f; want %.2f", i, result.Products[i].Price, want)
		}
	}
	if !result.Products[0].IsCheapest {
		t.Error("cheapest listing not flagged")
	}
	if result.Products[1].IsCheapest || result.Products[2].IsCheapest {
		t.Error("more than one listing flagged cheapest")
	}
	if result.Cheapest == nil || result.Cheapest.Price != 95 {
		t.Errorf("cheapest = %+v; want price 95", result.Cheapest)
	}
	if !result.Success {
		t.Error("success = false with products present")
	}
	if result.TotalResults != 3 {
		t.Errorf("total_results = %d; want 3", result.TotalResults)
	}
}

func TestSearchZeroResultsIsValid(t *testing.T) {
	o := testOrchestrator(t, func(ctx context.Context, platform config.PlatformConfig, query string) ([]models.Listing, error) {
		return nil, nil
	})

	result := o.Search(context.Background(), "milk", nil)

	if result.Success {
		t.Error("success = true with zero products")
	}
	if result.Products == nil || len(result.Products) != 0 {
		t.Errorf("products = %v; want empty non-nil slice", result.Products)
	}
	if result.Cheapest != nil {
		t.Errorf("cheapest = %+v; want nil", result.Cheapest)
	}
	if len(result.Errors) != 0 {
		t.Errorf("errors = %v; want none", result.Errors)
	}

	// Shape over the wire: products serializes as [], cheapest as null.
	raw, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if string(decoded["products"]) != "[]" {
		t.Errorf("products JSON = %s; want []", decoded["products"])
	}
	if string(decoded["cheapest"]) != "null" {
		t.Errorf("cheapest JSON = %s; want null", decoded["cheapest"])
	}
}

func TestSearchIdempotent(t *testing.T) {
	scrape := func(ctx context.Context, platform config.PlatformConfig, query string) ([]models.Listing, error) {
		switch platform.Key {
		case "amazon":
			return mockListings(platform.Name, 450.0, 120.0), nil
		case "zepto":
			return mockListings(platform.Name, 89.0), nil
		default:
			return nil, nil
		}
	}

	o := testOrchestrator(t, scrape)
	first := o.Search(context.Background(), "milk", []string{"amazon", "zepto"})
	firstJSON, _ := json.Marshal(first.Products)

	for i := 0; i < 10; i++ {
		again := o.Search(context.Background(), "milk", []string{"amazon", "zepto"})
		againJSON, _ := json.Marshal(again.Products)
		if string(firstJSON) != string(againJSON) {
			t.Fatalf("run %d differs:\n%s\nvs\n%s", i, firstJSON, againJSON)
		}
	}
}

func TestSearchCollectsPlatformErrors(t *testing.T) {
	o := testOrchestrator(t, func(ctx context.Context, platform config.PlatformConfig, query string) ([]models.Listing, error) {
		if platform.Key == "amazon" {
			return nil, errors.New("all fetch strategies failed")
		}
		return mockListings(platform.Name, 55.0), nil
	})

	result := o.Search(context.Background(), "milk", []string{"amazon", "flipkart"})

	if len(result.Products) != 1 {
		t.Fatalf("got %d products; want 1 from the healthy platform", len(result.Products))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("got %d errors; want 1", len(result.Errors))
	}
}

func TestSearchDedup(t *testing.T) {
	o := testOrchestrator(t, func(ctx context.Context, platform config.PlatformConfig, query string) ([]models.Listing, error) {
		if platform.Key == "amazon" {
			return mockListings(platform.Name, 99.0, 99.0, 120.0), nil
		}
		// Same price on a different platform must survive dedup.
		return mockListings(platform.Name, 99.0), nil
	})

	result := o.Search(context.Background(), "milk", []string{"amazon", "flipkart"})

	if len(result.Products) != 3 {
		t.Fatalf("got %d products; want 3 after (platform, price) dedup", len(result.Products))
	}
}

func TestSearchSequentialMode(t *testing.T) {
	o := NewOrchestrator(&config.ScraperConfig{
		Workers:         4,
		Concurrent:      false,
		PlatformTimeout: 5 * time.Second,
		MaxPlatforms:    6,
	})
	o.scrape = func(ctx context.Context, platform config.PlatformConfig, query string) ([]models.Listing, error) {
		return mockListings(platform.Name, 10.0), nil
	}

	result := o.Search(context.Background(), "milk", []string{"amazon", "flipkart", "zepto"})
	if len(result.Products) != 3 {
		t.Fatalf("got %d products; want 3 in sequential mode", len(result.Products))
	}
}

func TestSearchPlatformTimeout(t *testing.T) {
	o := NewOrchestrator(&config.ScraperConfig{
		Workers:         4,
		Concurrent:      true,
		PlatformTimeout: 50 * time.Millisecond,
		MaxPlatforms:    6,
	})
	o.scrape = func(ctx context.Context, platform config.PlatformConfig, query string) ([]models.Listing, error) {
		if platform.Key == "amazon" {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return mockListings(platform.Name, 42.0), nil
	}

	result := o.Search(context.Background(), "milk", []string{"amazon", "flipkart"})

	if len(result.Products) != 1 {
		t.Fatalf("got %d products; want 1 from the fast platform", len(result.Products))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("got %d errors; want 1 timeout error", len(result.Errors))
	}
}

func TestSearchCategoryDrivesPlatformSet(t *testing.T) {
	var seen []string
	o := testOrchestrator(t, func(ctx context.Context, platform config.PlatformConfig, query string) ([]models.Listing, error) {
		seen = append(seen, platform.Key)
		return nil, nil
	})

	// Sequential run so appends to seen stay race-free.
	o.cfg.Concurrent = false
	result := o.Search(context.Background(), "milk", nil)

	if result.Category != string(models.CategoryGrocery) {
		t.Fatalf("category = %s; want grocery", result.Category)
	}
	for _, key := range seen {
		switch key {
		case "croma", "vijay_sales", "reliance_digital", "myntra":
			t.Errorf("electronics/fashion platform %s scraped for a grocery query", key)
		}
	}
}
