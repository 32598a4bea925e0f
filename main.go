package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"pricehound/config"
	"pricehound/handlers"
	"pricehound/middleware"
	"pricehound/scheduler"
	"pricehound/scraper"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Initialize orchestrator (fetch chain, parser, cache)
	orchestrator := scraper.NewOrchestrator(cfg)
	defer orchestrator.Close()

	// Initialize and start platform reachability probe
	var probe *scheduler.PlatformProbe
	if cfg.ProbeEnabled {
		probe = scheduler.NewPlatformProbe(cfg.ProbeSchedule)
		probe.Start()
		defer probe.Stop()
	}

	// Initialize handlers
	h := handlers.NewHandlers(cfg, orchestrator, probe)

	// Setup router
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(rateLimitPerSecond()))

	r.HandleFunc("/", h.Root).Methods("GET")
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/platforms", h.Platforms).Methods("GET")

	// Both with and without trailing slash; existing callers use both forms
	r.HandleFunc("/scrape/prices", h.ScrapePrices).Methods("POST")
	r.HandleFunc("/scrape/prices/", h.ScrapePrices).Methods("POST")
	r.HandleFunc("/query/price", h.QueryPrice).Methods("POST")
	r.HandleFunc("/query/price/", h.QueryPrice).Methods("POST")

	r.PathPrefix("/").HandlerFunc(h.Options).Methods("OPTIONS")

	// CORS configuration
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}

	c := cors.New(cors.Options{
		AllowedOrigins: strings.Split(allowedOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	host := os.Getenv("HOST")
	if host == "" {
		host = "0.0.0.0"
	}

	log.Printf("🌐 Server starting on %s:%s", host, port)
	log.Printf("📋 Endpoints:")
	log.Printf("   POST /scrape/prices/ - Search prices across platforms")
	log.Printf("   POST /query/price/ - Free-text price query")
	log.Printf("   GET  /platforms - Supported platforms")
	log.Printf("   GET  /health - Health check")

	log.Fatal(http.ListenAndServe(host+":"+port, c.Handler(r)))
}

func rateLimitPerSecond() float64 {
	// Scrape requests fan out to many upstream sites; keep the per-IP rate low.
	raw := os.Getenv("RATE_LIMIT_RPS")
	if raw == "" {
		return 2
	}
	rps, err := strconv.ParseFloat(raw, 64)
	if err != nil || rps <= 0 {
		return 2
	}
	return rps
}
