package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pricehound/config"
)

// browserHeaders is the realistic header set sent on direct fetches.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Connection":      "keep-alive",
}

// FetchStrategy is one specific method of retrieving a URL's content.
type FetchStrategy interface {
	Name() string
	Configured() bool
	Fetch(ctx context.Context, target string, cfg config.PlatformConfig) ([]byte, error)
}

// StrategyError records why one strategy in the chain failed.
type StrategyError struct {
	Strategy string `json:"strategy"`
	Err      string `json:"error"`
}

// FetchFailure means every strategy in the chain was exhausted.
type FetchFailure struct {
	URL      string
	Attempts []StrategyError
}

func (f *FetchFailure) Error() string {
	parts := make([]string, 0, len(f.Attempts))
	for _, a := range f.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %s", a.Strategy, a.Err))
	}
	return fmt.Sprintf("all fetch strategies failed for %s [%s]", f.URL, strings.Join(parts, "; "))
}

// Fetcher runs the fetch strategy chain for platform pages.
type Fetcher struct {
	strategies   []FetchStrategy
	minBodyBytes int
}

// NewFetcher assembles the chain in its fixed priority order: proxy service
// without rendering, proxy service with premium routing, alternate proxy
// service, direct HTTP, and finally the local headless browser when enabled.
func NewFetcher(cfg *config.ScraperConfig) *Fetcher {
	strategies := []FetchStrategy{
		&scraperAPIStrategy{apiKey: cfg.ScraperAPIKey, premium: false, timeout: cfg.ProxyTimeout, renderExtra: cfg.RenderExtra},
		&scraperAPIStrategy{apiKey: cfg.ScraperAPIKey, premium: true, timeout: cfg.ProxyTimeout, renderExtra: cfg.RenderExtra},
		&scrapingBeeStrategy{apiKey: cfg.ScrapingBeeKey, timeout: cfg.ProxyTimeout, renderExtra: cfg.RenderExtra},
		&directStrategy{timeout: cfg.DirectTimeout},
	}
	if cfg.BrowserEnabled {
		strategies = append(strategies, newBrowserStrategy(cfg.ProxyTimeout+cfg.RenderExtra))
	}
	return &Fetcher{strategies: strategies, minBodyBytes: cfg.MinBodyBytes}
}

// NewFetcherWithStrategies exists for tests and callers with a custom chain.
func NewFetcherWithStrategies(minBodyBytes int, strategies ...FetchStrategy) *Fetcher {
	return &Fetcher{strategies: strategies, minBodyBytes: minBodyBytes}
}

// Close releases strategies that hold external resources, currently just the
// headless browser.
func (f *Fetcher) Close() {
	for _, s := range f.strategies {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}

// Fetch walks the chain until one strategy yields usable content. A strategy
// succeeds only when it returns HTTP 200 and a body larger than the minimum
// size; proxy services like to return empty error pages with a 200 status.
// The first success wins and the remaining strategies never run.
func (f *Fetcher) Fetch(ctx context.Context, target string, cfg config.PlatformConfig) ([]byte, error) {
	var attempts []StrategyError
	for _, strategy := range f.strategies {
		if !strategy.Configured() {
			attempts = append(attempts, StrategyError{Strategy: strategy.Name(), Err: "not configured"})
			continue
		}
		body, err := strategy.Fetch(ctx, target, cfg)
		if err != nil {
			log.Printf("⚠️ %s failed for %s: %v", strategy.Name(), cfg.Name, err)
			attempts = append(attempts, StrategyError{Strategy: strategy.Name(), Err: err.Error()})
			continue
		}
		if len(body) < f.minBodyBytes {
			err := fmt.Errorf("body too small (%d bytes)", len(body))
			log.Printf("⚠️ %s returned a suspiciously small page for %s: %v", strategy.Name(), cfg.Name, err)
			attempts = append(attempts, StrategyError{Strategy: strategy.Name(), Err: err.Error()})
			continue
		}
		log.Printf("📥 %s fetched %s (%d bytes)", strategy.Name(), cfg.Name, len(body))
		return body, nil
	}
	return nil, &FetchFailure{URL: target, Attempts: attempts}
}

// doRequest performs one GET under its own timeout layered onto ctx.
func doRequest(ctx context.Context, rawURL string, headers map[string]string, timeout time.Duration) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// scraperAPIStrategy routes the request through the ScraperAPI proxy service.
// The service handles geo routing and, when asked, JS rendering; billing and
// credit semantics are its problem, not ours.
type scraperAPIStrategy struct {
	apiKey      string
	premium     bool
	timeout     time.Duration
	renderExtra time.Duration
}

func (s *scraperAPIStrategy) Name() string {
	if s.premium {
		return "scraperapi-premium"
	}
	return "scraperapi"
}

func (s *scraperAPIStrategy) Configured() bool { return s.apiKey != "" }

func (s *scraperAPIStrategy) Fetch(ctx context.Context, target string, cfg config.PlatformConfig) ([]byte, error) {
	params := url.Values{}
	params.Set("api_key", s.apiKey)
	params.Set("url", target)
	params.Set("country_code", "in")
	if cfg.RequiresJS {
		params.Set("render", "true")
	} else {
		params.Set("render", "false")
	}
	if s.premium {
		params.Set("premium", "true")
	}

	timeout := s.timeout
	if cfg.RequiresJS {
		timeout += s.renderExtra
	}
	return doRequest(ctx, "http://api.scraperapi.com/?"+params.Encode(), nil, timeout)
}

// scrapingBeeStrategy is the alternate proxy service.
type scrapingBeeStrategy struct {
	apiKey      string
	timeout     time.Duration
	renderExtra time.Duration
}

func (s *scrapingBeeStrategy) Name() string { return "scrapingbee" }

func (s *scrapingBeeStrategy) Configured() bool { return s.apiKey != "" }

func (s *scrapingBeeStrategy) Fetch(ctx context.Context, target string, cfg config.PlatformConfig) ([]byte, error) {
	params := url.Values{}
	params.Set("api_key", s.apiKey)
	params.Set("url", target)
	params.Set("country_code", "in")
	if cfg.RequiresJS {
		params.Set("render_js", "true")
	} else {
		params.Set("render_js", "false")
	}

	timeout := s.timeout
	if cfg.RequiresJS {
		timeout += s.renderExtra
	}
	return doRequest(ctx, "https://app.scrapingbee.com/api/v1/?"+params.Encode(), nil, timeout)
}

// directStrategy fetches the page straight from the site with a realistic
// browser header set. Short timeout: if the site is slow for us it is most
// likely blocking us, and the proxy strategies already had their turn.
type directStrategy struct {
	timeout time.Duration
}

func (s *directStrategy) Name() string { return "direct" }

func (s *directStrategy) Configured() bool { return true }

func (s *directStrategy) Fetch(ctx context.Context, target string, cfg config.PlatformConfig) ([]byte, error) {
	return doRequest(ctx, target, browserHeaders, s.timeout)
}
