package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// ServerOptions bundles everything needed to assemble the public server.
type ServerOptions struct {
	Addr string

	// Stats backs /api/stats (required)
	Stats StatsSource

	// WebSocketHandler serves GET /ws, wrapped with the per-IP
	// connection cap before registration.
	WebSocketHandler http.HandlerFunc

	RateLimit     RateLimitConfig
	MaxConnsPerIP int
}

// Server is the public HTTP server: health, stats and the WebSocket
// endpoint behind rate limiting.
type Server struct {
	router      *chi.Mux
	httpServer  *http.Server
	rateLimiter *IPRateLimiter
	wsLimiter   *WebSocketRateLimiter
}

// NewServer builds the server. No listeners are opened until Start.
func NewServer(opts ServerOptions) *Server {
	s := &Server{
		rateLimiter: NewIPRateLimiter(opts.RateLimit),
		wsLimiter:   NewWebSocketRateLimiter(opts.MaxConnsPerIP),
	}

	wsHandler := opts.WebSocketHandler
	if wsHandler != nil {
		wsHandler = s.limitWebSocket(wsHandler)
	}

	s.router = NewRouter(RouterConfig{
		Stats:            opts.Stats,
		WebSocketHandler: wsHandler,
		RateLimiter:      s.rateLimiter,
	})

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// limitWebSocket enforces the per-IP concurrent connection cap around the
// upgrade handler. Release happens when the connection's handler returns.
func (s *Server) limitWebSocket(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := GetClientIP(r)
		if !s.wsLimiter.Allow(ip) {
			RecordConnectionRejected("ws_limit")
			http.Error(w, "Too Many Connections", http.StatusTooManyRequests)
			return
		}
		defer s.wsLimiter.Release(ip)
		next(w, r)
	}
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start blocks serving until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	log.Printf("server listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains the HTTP server and stops the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.Stop()
	return s.httpServer.Shutdown(ctx)
}
