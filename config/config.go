package config

import (
	"os"
	"strconv"
	"time"
)

// ScraperConfig holds all tunable scraper settings. Values are read once at
// startup from environment variables and never mutated afterwards.
type ScraperConfig struct {
	// Proxy fetch services. Either key may be empty, in which case the
	// corresponding strategies report "not configured" and are skipped.
	ScraperAPIKey  string
	ScrapingBeeKey string

	// BrowserEnabled turns on the local headless-render fetch strategy as the
	// last link of the chain.
	BrowserEnabled bool

	// MaxPlatforms caps how many platforms a single request fans out to. The
	// cap is a product/deployment knob, not a load-bearing constant.
	MaxPlatforms int

	// Workers sizes the platform worker pool. Concurrent=false forces
	// sequential execution, which is slower but gentler on upstream sites.
	Workers    int
	Concurrent bool

	// PlatformTimeout bounds one platform's whole fetch+parse pipeline.
	PlatformTimeout time.Duration

	// MinBodyBytes is the smallest response body accepted as a real page.
	// Proxy services sometimes return empty error pages with a 200 status.
	MinBodyBytes int

	// MaxItemsPerPlatform caps containers parsed per page.
	MaxItemsPerPlatform int

	// MaxTitleLen truncates extracted titles.
	MaxTitleLen int

	// PriceCeiling is a plausibility filter, not a currency parser: pages
	// embed SKU codes and serial numbers in price-adjacent markup.
	PriceCeiling float64

	// Relevance thresholds. Tunable, defaults taken as-is from operation.
	TokenMatchRatio float64
	SimilarityFloor float64

	// Result cache.
	CacheEnabled bool
	CacheTTL     time.Duration

	// DedupEnabled drops repeated (platform, price) pairs.
	DedupEnabled bool

	// Probe settings for the background platform reachability check.
	ProbeEnabled  bool
	ProbeSchedule string

	DirectTimeout time.Duration
	ProxyTimeout  time.Duration
	RenderExtra   time.Duration
}

// Load reads scraper settings from the environment.
func Load() *ScraperConfig {
	return &ScraperConfig{
		ScraperAPIKey:       os.Getenv("SCRAPER_API_KEY"),
		ScrapingBeeKey:      os.Getenv("SCRAPINGBEE_API_KEY"),
		BrowserEnabled:      getEnvBool("SCRAPER_BROWSER_ENABLED", false),
		MaxPlatforms:        getEnvInt("SCRAPER_MAX_PLATFORMS", 6),
		Workers:             getEnvInt("SCRAPER_WORKERS", 4),
		Concurrent:          getEnvBool("SCRAPER_CONCURRENT", true),
		PlatformTimeout:     getEnvDuration("SCRAPER_PLATFORM_TIMEOUT", 30*time.Second),
		MinBodyBytes:        getEnvInt("SCRAPER_MIN_BODY_BYTES", 1000),
		MaxItemsPerPlatform: getEnvInt("SCRAPER_MAX_ITEMS", 10),
		MaxTitleLen:         getEnvInt("SCRAPER_MAX_TITLE_LEN", 200),
		PriceCeiling:        getEnvFloat("SCRAPER_PRICE_CEILING", 10000000),
		TokenMatchRatio:     getEnvFloat("SCRAPER_TOKEN_MATCH_RATIO", 0.6),
		SimilarityFloor:     getEnvFloat("SCRAPER_SIMILARITY_FLOOR", 0.4),
		CacheEnabled:        getEnvBool("SCRAPER_CACHE_ENABLED", true),
		CacheTTL:            getEnvDuration("SCRAPER_CACHE_TTL", 5*time.Minute),
		DedupEnabled:        getEnvBool("SCRAPER_DEDUP_ENABLED", true),
		ProbeEnabled:        getEnvBool("SCRAPER_PROBE_ENABLED", true),
		ProbeSchedule:       getEnv("SCRAPER_PROBE_SCHEDULE", "@every 15m"),
		DirectTimeout:       getEnvDuration("SCRAPER_DIRECT_TIMEOUT", 10*time.Second),
		ProxyTimeout:        getEnvDuration("SCRAPER_PROXY_TIMEOUT", 30*time.Second),
		RenderExtra:         getEnvDuration("SCRAPER_RENDER_EXTRA", 15*time.Second),
	}
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
