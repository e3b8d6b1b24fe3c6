package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/stick-arena/arena-server/internal/api"
	"github.com/stick-arena/arena-server/internal/config"
	"github.com/stick-arena/arena-server/internal/network"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("no .env file found, using environment variables only")
	}

	cfg := config.Load()

	settings := cfg.Game.Settings()
	settings.TickObserver = api.RecordTick

	log.Printf("arena server: %d Hz tick, %d Hz delta, %ds matches, %d kills to win, rooms of %d",
		cfg.Game.TickRateHz, cfg.Game.BroadcastDeltaHz, cfg.Game.MatchDurationSeconds,
		cfg.Game.KillTarget, cfg.Game.RoomCapacity)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := network.NewHandler(ctx, settings, cfg.Server.IdleTimeout)
	hub.OnConnect = func() { api.UpdateWSConnections(hub.ClientCount()) }
	hub.OnDisconnect = func() { api.UpdateWSConnections(hub.ClientCount()) }
	hub.OnMessage = api.IncrementWSMessages

	// Debug server (pprof + prometheus), localhost only.
	debugCfg := api.DefaultObservabilityConfig()
	debugCfg.ListenAddr = fmt.Sprintf("127.0.0.1:%d", cfg.Server.DebugPort)
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("debug server disabled: %v", err)
		}
	}

	server := api.NewServer(api.ServerOptions{
		Addr:             fmt.Sprintf(":%d", cfg.Server.Port),
		Stats:            hub.Rooms(),
		WebSocketHandler: hub.HandleWebSocket,
		RateLimit: api.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.ConnectionsPerSecond,
			Burst:             cfg.RateLimit.ConnectionBurst,
			CleanupInterval:   5 * time.Minute,
		},
		MaxConnsPerIP: cfg.RateLimit.MaxConnectionsPerIP,
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	// Sample room/player gauges at a low cadence.
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				api.UpdateRoomCount(hub.Rooms().RoomCount())
				api.UpdatePlayerCount(hub.Rooms().PlayerCount())
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("server ready")
	<-quit

	log.Println("shutting down...")

	// room:closing goes out before sockets drop so clients can show a
	// clean end screen instead of a connection error.
	hub.Shutdown()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	log.Println("goodbye")
}
