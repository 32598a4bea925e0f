package scraper

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"pricehound/config"
	"pricehound/models"
)

// scrapeFunc runs one platform's whole pipeline. Swappable so tests can
// substitute mocked platforms for the network-bound pipeline.
type scrapeFunc func(ctx context.Context, platform config.PlatformConfig, query string) ([]models.Listing, error)

// Orchestrator fans a query out to the selected platform adapters, collects
// whatever they managed to scrape and merges it into one price-sorted result.
// Platform failures are recorded, never propagated: a request only fails on
// its own shape, not on upstream flakiness.
type Orchestrator struct {
	cfg     *config.ScraperConfig
	fetcher *Fetcher
	cache   *ResultCache
	scrape  scrapeFunc
}

// NewOrchestrator wires the orchestrator with the real fetch+parse pipeline.
func NewOrchestrator(cfg *config.ScraperConfig) *Orchestrator {
	o := &Orchestrator{
		cfg:     cfg,
		fetcher: NewFetcher(cfg),
	}
	if cfg.CacheEnabled {
		o.cache = NewResultCache(cfg.CacheTTL)
	}
	o.scrape = o.scrapePlatform
	return o
}

// Close releases resources held by the fetch chain.
func (o *Orchestrator) Close() {
	if o.fetcher != nil {
		o.fetcher.Close()
	}
}

// platformOutcome is one platform's contribution to a search.
type platformOutcome struct {
	platform string
	listings []models.Listing
	err      error
}

// Search resolves the platform set for the query, runs each platform's
// pipeline under its own timeout, and assembles the merged result. Zero
// listings across all platforms is a valid, successful outcome.
func (o *Orchestrator) Search(ctx context.Context, query string, requested []string) *models.SearchResult {
	start := time.Now()

	platforms, category := ResolvePlatforms(query, requested, o.cfg.MaxPlatforms)
	searched := make([]string, 0, len(platforms))
	for _, p := range platforms {
		searched = append(searched, p.Key)
	}
	log.Printf("🔍 Searching %q (category %s) on %v", query, category, searched)

	outcomes := o.runPlatforms(ctx, platforms, query)

	var merged []models.Listing
	var errors []string
	for _, outcome := range outcomes {
		if outcome.err != nil {
			log.Printf("❌ %s contributed nothing: %v", outcome.platform, outcome.err)
			errors = append(errors, fmt.Sprintf("%s: %v", outcome.platform, outcome.err))
			continue
		}
		merged = append(merged, outcome.listings...)
	}

	if o.cfg.DedupEnabled {
		merged = dedupListings(merged)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Price < merged[j].Price
	})
	if len(merged) > 0 {
		merged[0].IsCheapest = true
	}
	if merged == nil {
		merged = []models.Listing{}
	}

	elapsed := time.Since(start)
	log.Printf("✅ %q: %d listings from %d platforms in %.2fs", query, len(merged), len(platforms), elapsed.Seconds())
	return models.NewSearchResult(query, category, searched, merged, errors, elapsed)
}

// runPlatforms executes the per-platform pipelines, concurrently through a
// bounded worker pool or one at a time. Concurrency trades stricter pacing
// for latency; sequential is gentler on upstream anti-bot defenses.
func (o *Orchestrator) runPlatforms(ctx context.Context, platforms []config.PlatformConfig, query string) []platformOutcome {
	workers := o.cfg.Workers
	if !o.cfg.Concurrent || workers < 1 {
		workers = 1
	}
	if workers > len(platforms) {
		workers = len(platforms)
	}
	if workers == 0 {
		return nil
	}

	jobs := make(chan config.PlatformConfig, len(platforms))
	results := make(chan platformOutcome, len(platforms))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for platform := range jobs {
				results <- o.runOne(ctx, platform, query)
			}
		}()
	}

	for _, platform := range platforms {
		jobs <- platform
	}
	close(jobs)
	wg.Wait()
	close(results)

	outcomes := make([]platformOutcome, 0, len(platforms))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// runOne executes a single platform pipeline under its own timeout. A slow
// platform times out alone; its partial work is discarded, not merged.
func (o *Orchestrator) runOne(ctx context.Context, platform config.PlatformConfig, query string) platformOutcome {
	taskCtx, cancel := context.WithTimeout(ctx, o.cfg.PlatformTimeout)
	defer cancel()

	type result struct {
		listings []models.Listing
		err      error
	}
	done := make(chan result, 1)
	go func() {
		listings, err := o.scrape(taskCtx, platform, query)
		done <- result{listings: listings, err: err}
	}()

	select {
	case r := <-done:
		return platformOutcome{platform: platform.Key, listings: r.listings, err: r.err}
	case <-taskCtx.Done():
		return platformOutcome{platform: platform.Key, err: fmt.Errorf("timed out after %s", o.cfg.PlatformTimeout)}
	}
}

// scrapePlatform is the real pipeline: cache check, rate-limit pause, fetch
// strategy chain, parse.
func (o *Orchestrator) scrapePlatform(ctx context.Context, platform config.PlatformConfig, query string) ([]models.Listing, error) {
	if listings, ok := o.cache.Get(platform.Key, query); ok {
		log.Printf("💾 %s: cache hit for %q", platform.Name, query)
		return listings, nil
	}

	// Blocking pause drawn from the platform's configured range. Per-adapter
	// cost that lowers the odds of upstream blocking; not a global limiter.
	rateLimitPause(ctx, platform)

	searchURL := platform.SearchURLFor(query)
	body, err := o.fetcher.Fetch(ctx, searchURL, platform)
	if err != nil {
		return nil, err
	}

	listings := ParseListings(body, platform, query, searchURL, ParseOptions{
		MaxItems:        o.cfg.MaxItemsPerPlatform,
		MaxTitleLen:     o.cfg.MaxTitleLen,
		PriceCeiling:    o.cfg.PriceCeiling,
		TokenMatchRatio: o.cfg.TokenMatchRatio,
		SimilarityFloor: o.cfg.SimilarityFloor,
	})

	o.cache.Set(platform.Key, query, listings)
	return listings, nil
}

// rateLimitPause sleeps for a uniformly random duration from the platform's
// configured range, or until the context is cancelled.
func rateLimitPause(ctx context.Context, platform config.PlatformConfig) {
	if platform.RateLimitMax <= 0 {
		return
	}
	span := platform.RateLimitMax - platform.RateLimitMin
	pause := platform.RateLimitMin
	if span > 0 {
		pause += time.Duration(rand.Int63n(int64(span)))
	}
	select {
	case <-time.After(pause):
	case <-ctx.Done():
	}
}

// dedupListings drops repeated (platform, price) pairs, keeping the first.
func dedupListings(listings []models.Listing) []models.Listing {
	type key struct {
		platform string
		price    float64
	}
	seen := make(map[key]bool, len(listings))
	deduped := listings[:0]
	for _, l := range listings {
		k := key{platform: l.Platform, price: l.Price}
		if seen[k] {
			continue
		}
		seen[k] = true
		deduped = append(deduped, l)
	}
	return deduped
}
