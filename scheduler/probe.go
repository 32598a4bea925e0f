package scheduler

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"pricehound/config"

	"github.com/robfig/cron/v3"
)

// PlatformStatus is one platform's most recent reachability check.
type PlatformStatus struct {
	Platform  string    `json:"platform"`
	Reachable bool      `json:"reachable"`
	Status    int       `json:"status,omitempty"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// PlatformProbe periodically pings each configured platform's home page and
// keeps the last result per platform for the health endpoint. It only tells
// us the site answers HTTP at all; blocked scraping still shows reachable.
type PlatformProbe struct {
	cron     *cron.Cron
	schedule string
	client   *http.Client
	mu       sync.RWMutex
	statuses map[string]PlatformStatus
}

func NewPlatformProbe(schedule string) *PlatformProbe {
	return &PlatformProbe{
		cron:     cron.New(),
		schedule: schedule,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		statuses: make(map[string]PlatformStatus),
	}
}

// Start schedules the recurring probe and runs one immediately so /health has
// data before the first tick.
func (p *PlatformProbe) Start() {
	_, err := p.cron.AddFunc(p.schedule, p.probeAll)
	if err != nil {
		log.Printf("Failed to schedule platform probe: %v", err)
		return
	}

	go p.probeAll()

	p.cron.Start()
	log.Printf("🩺 Platform probe scheduled (%s)", p.schedule)
}

// Stop stops the scheduled probing
func (p *PlatformProbe) Stop() {
	if p.cron != nil {
		p.cron.Stop()
	}
}

// Statuses returns a copy of the latest per-platform results.
func (p *PlatformProbe) Statuses() map[string]PlatformStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]PlatformStatus, len(p.statuses))
	for k, v := range p.statuses {
		out[k] = v
	}
	return out
}

func (p *PlatformProbe) probeAll() {
	log.Printf("🩺 Probing %d platforms", len(config.Platforms))
	for key := range config.Platforms {
		go p.ProbeOne(context.Background(), key)
	}
}

// ProbeOne checks a single platform's base URL and records the outcome.
func (p *PlatformProbe) ProbeOne(ctx context.Context, key string) PlatformStatus {
	status := PlatformStatus{Platform: key, CheckedAt: time.Now().UTC()}

	cfg, ok := config.Get(key)
	if !ok {
		status.Error = "unknown platform"
		p.record(status)
		return status
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.BaseURL, nil)
	if err != nil {
		status.Error = err.Error()
		p.record(status)
		return status
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := p.client.Do(req)
	if err != nil {
		status.Error = err.Error()
		p.record(status)
		return status
	}
	defer resp.Body.Close()

	status.Status = resp.StatusCode
	status.Reachable = resp.StatusCode < 500
	p.record(status)
	return status
}

func (p *PlatformProbe) record(status PlatformStatus) {
	p.mu.Lock()
	p.statuses[status.Platform] = status
	p.mu.Unlock()
}
