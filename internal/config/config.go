// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all server and match settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/stick-arena/arena-server/internal/game"
)

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int
	DebugPort       int           // Localhost-only pprof/metrics listener
	IdleTimeout     time.Duration // Close a connection after this long without a message
	ShutdownTimeout time.Duration
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:            8080,
		DebugPort:       6060,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
// Environment variables take precedence over defaults.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if p := getEnvInt("DEBUG_PORT", 0); p > 0 {
		cfg.DebugPort = p
	}
	if ms := getEnvInt("IDLE_TIMEOUT_MS", 0); ms > 0 {
		cfg.IdleTimeout = time.Duration(ms) * time.Millisecond
	}
	if ms := getEnvInt("SHUTDOWN_TIMEOUT_MS", 0); ms > 0 {
		cfg.ShutdownTimeout = time.Duration(ms) * time.Millisecond
	}

	return cfg
}

// =============================================================================
// GAME CONFIGURATION
// =============================================================================

// GameConfig holds simulation and match settings.
type GameConfig struct {
	TickRateHz           int // Simulation steps per second
	BroadcastDeltaHz     int // player:move cadence
	BroadcastSnapshotHz  int // state:snapshot cadence
	MatchDurationSeconds int
	KillTarget           int
	RoomCapacity         int
	RespawnDelayMs       int
	PickupRadius         float64 // Pixels from crate center
	CrateRespawnMs       int
}

// DefaultGame returns the default game configuration.
func DefaultGame() GameConfig {
	return GameConfig{
		TickRateHz:           60,
		BroadcastDeltaHz:     20,
		BroadcastSnapshotHz:  1,
		MatchDurationSeconds: 420, // 7 minutes
		KillTarget:           10,
		RoomCapacity:         8,
		RespawnDelayMs:       3000,
		PickupRadius:         50,
		CrateRespawnMs:       15000,
	}
}

// GameFromEnv returns game configuration with environment variable overrides.
func GameFromEnv() GameConfig {
	cfg := DefaultGame()

	if v := getEnvInt("TICK_RATE_HZ", 0); v > 0 {
		cfg.TickRateHz = v
	}
	if v := getEnvInt("BROADCAST_DELTA_HZ", 0); v > 0 {
		cfg.BroadcastDeltaHz = v
	}
	if v := getEnvInt("BROADCAST_SNAPSHOT_HZ", 0); v > 0 {
		cfg.BroadcastSnapshotHz = v
	}
	if v := getEnvInt("MATCH_DURATION_SECONDS", 0); v > 0 {
		cfg.MatchDurationSeconds = v
	}
	if v := getEnvInt("KILL_TARGET", 0); v > 0 {
		cfg.KillTarget = v
	}
	if v := getEnvInt("ROOM_CAPACITY", 0); v > 0 {
		cfg.RoomCapacity = v
	}
	if v := getEnvInt("RESPAWN_DELAY_MS", 0); v > 0 {
		cfg.RespawnDelayMs = v
	}
	if v := getEnvFloat("PICKUP_RADIUS", 0); v > 0 {
		cfg.PickupRadius = v
	}
	if v := getEnvInt("CRATE_RESPAWN_MS", 0); v > 0 {
		cfg.CrateRespawnMs = v
	}

	return cfg
}

// Settings converts the config into the simulation's settings struct.
func (c GameConfig) Settings() game.Settings {
	return game.Settings{
		TickRateHz:          c.TickRateHz,
		BroadcastDeltaHz:    c.BroadcastDeltaHz,
		BroadcastSnapshotHz: c.BroadcastSnapshotHz,
		MatchDuration:       time.Duration(c.MatchDurationSeconds) * time.Second,
		KillTarget:          c.KillTarget,
		RoomCapacity:        c.RoomCapacity,
		RespawnDelay:        time.Duration(c.RespawnDelayMs) * time.Millisecond,
		PickupRadius:        c.PickupRadius,
		CrateRespawnDelay:   time.Duration(c.CrateRespawnMs) * time.Millisecond,
	}
}

// =============================================================================
// RATE LIMIT CONFIGURATION
// =============================================================================

// RateLimitConfig controls per-IP connection throttling.
type RateLimitConfig struct {
	ConnectionsPerSecond float64 // Token refill rate per IP
	ConnectionBurst      int
	MaxConnectionsPerIP  int // Concurrent sockets per IP
}

// DefaultRateLimit returns the default rate limit configuration.
func DefaultRateLimit() RateLimitConfig {
	return RateLimitConfig{
		ConnectionsPerSecond: 2,
		ConnectionBurst:      5,
		MaxConnectionsPerIP:  4,
	}
}

// RateLimitFromEnv returns rate limit configuration with environment overrides.
func RateLimitFromEnv() RateLimitConfig {
	cfg := DefaultRateLimit()

	if v := getEnvFloat("CONN_RATE_PER_SEC", 0); v > 0 {
		cfg.ConnectionsPerSecond = v
	}
	if v := getEnvInt("CONN_BURST", 0); v > 0 {
		cfg.ConnectionBurst = v
	}
	if v := getEnvInt("MAX_CONNS_PER_IP", 0); v > 0 {
		cfg.MaxConnectionsPerIP = v
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Server    ServerConfig
	Game      GameConfig
	RateLimit RateLimitConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Server:    ServerFromEnv(),
		Game:      GameFromEnv(),
		RateLimit: RateLimitFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
