package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// StatsSource defines the hub methods used by the API.
// This interface enables mocking for tests without spinning up rooms.
// Keep this minimal - only include methods the API layer actually calls.
type StatsSource interface {
	// RoomCount returns the number of active rooms
	RoomCount() int
	// PlayerCount returns the number of players across all rooms
	PlayerCount() int
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
// This struct is designed for dependency injection and testability.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Stats: mockStats,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Stats is the room/player counter source (required)
	Stats StatsSource

	// WebSocketHandler serves GET /ws. Optional; when nil the route is
	// not registered (useful for HTTP-only tests).
	WebSocketHandler http.HandlerFunc

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, any origin is allowed (the game client is origin-agnostic).
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

type routerHandlers struct {
	stats   StatsSource
	limiter *IPRateLimiter
	started time.Time
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function is PURE aside from the rate limiter cleanup
// goroutine - no network listeners are opened and no rooms are started.
// This makes it safe to use in tests with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	h := &routerHandlers{
		stats:   cfg.Stats,
		limiter: rateLimiter,
		started: time.Now(),
	}

	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", h.handleGetStats)
	})

	if cfg.WebSocketHandler != nil {
		r.Get("/ws", cfg.WebSocketHandler)
	}

	return r
}

func (h *routerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"rooms":         0,
		"players":       0,
		"uptimeSeconds": int(time.Since(h.started).Seconds()),
	}
	if h.stats != nil {
		stats["rooms"] = h.stats.RoomCount()
		stats["players"] = h.stats.PlayerCount()
	}
	if h.limiter != nil {
		stats["rateLimit"] = h.limiter.GetStats()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
