package scraper

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"pricehound/config"
)

// browserStrategy renders the page in a local headless Chromium and hands
// back the settled DOM. Last link of the chain: it is the slowest option and
// the only one that costs local resources, but it works on storefronts that
// serve nothing useful without JavaScript.
type browserStrategy struct {
	timeout time.Duration

	once    sync.Once
	browser *rod.Browser
	initErr error
}

func newBrowserStrategy(timeout time.Duration) *browserStrategy {
	return &browserStrategy{timeout: timeout}
}

func (s *browserStrategy) Name() string { return "browser" }

func (s *browserStrategy) Configured() bool { return true }

// connect launches Chromium lazily on first use. Uses system Chromium when
// running in Docker, auto-detected otherwise.
func (s *browserStrategy) connect() (*rod.Browser, error) {
	s.once.Do(func() {
		l := launcher.New().
			Headless(true).
			NoSandbox(true).
			Leakless(false)

		if _, err := os.Stat("/usr/bin/chromium-browser"); err == nil {
			l = l.Bin("/usr/bin/chromium-browser")
			log.Printf("Using system Chromium in Docker environment")
		} else {
			log.Printf("Using auto-detected Chromium (local environment)")
		}

		controlURL, err := l.Launch()
		if err != nil {
			s.initErr = fmt.Errorf("launch browser: %w", err)
			return
		}
		browser := rod.New().ControlURL(controlURL)
		if err := browser.Connect(); err != nil {
			s.initErr = fmt.Errorf("connect browser: %w", err)
			return
		}
		s.browser = browser
		log.Printf("✅ Headless browser connected at: %s", controlURL)
	})
	return s.browser, s.initErr
}

func (s *browserStrategy) Fetch(ctx context.Context, target string, cfg config.PlatformConfig) ([]byte, error) {
	browser, err := s.connect()
	if err != nil {
		return nil, err
	}

	var html string
	err = rod.Try(func() {
		page := browser.Context(ctx).Timeout(s.timeout).MustPage(target)
		defer page.MustClose()

		page.MustSetViewport(1920, 1080, 1.0, false)
		page.MustWaitLoad()
		// Give dynamic storefronts a beat to settle before reading the DOM.
		page.MustWaitStable()
		html = page.MustHTML()
	})
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", target, err)
	}
	return []byte(html), nil
}

// Close releases the headless browser, if one was launched.
func (s *browserStrategy) Close() {
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			log.Printf("⚠️ Browser close failed: %v", err)
		}
	}
}
