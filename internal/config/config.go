// Package config loads server settings from FOGWALK_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// MaxGridSize matches the largest window the board will generate
const MaxGridSize = 101

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Server holds every server setting
type Server struct {
	Host string `env:"FOGWALK_HOST"`
	Port int    `env:"FOGWALK_PORT" envDefault:"8080"`

	ReadTimeout time.Duration `env:"FOGWALK_READ_TIMEOUT" envDefault:"15s"`
	// WriteTimeout also bounds SSE streams; clients reconnect when it fires
	WriteTimeout    time.Duration `env:"FOGWALK_WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"FOGWALK_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	Storage  string `env:"FOGWALK_STORAGE" envDefault:"memory"`
	RedisURL string `env:"FOGWALK_REDIS_URL" envDefault:"redis://localhost:6379"`
	// SessionTTL is how long an untouched game session is kept in Redis
	SessionTTL time.Duration `env:"FOGWALK_SESSION_TTL" envDefault:"720h"`

	AuthSessionDuration time.Duration `env:"FOGWALK_AUTH_SESSION_DURATION" envDefault:"24h"`
	IdentityFreshness   time.Duration `env:"FOGWALK_IDENTITY_FRESHNESS" envDefault:"168h"`

	GridSize        int     `env:"FOGWALK_GRID_SIZE" envDefault:"21"`
	VisibleRadius   int     `env:"FOGWALK_VISIBLE_RADIUS" envDefault:"3"`
	VisibilityScale float64 `env:"FOGWALK_VISIBILITY_SCALE" envDefault:"1.0"`

	DefaultLocale string `env:"FOGWALK_DEFAULT_LOCALE" envDefault:"en"`
	DefaultWorld  string `env:"FOGWALK_DEFAULT_WORLD" envDefault:"Meadow"`
	LogLevel      string `env:"FOGWALK_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates the server configuration
func Load() (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with
func (c Server) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("FOGWALK_STORAGE must be %q or %q, got %q", StorageMemory, StorageRedis, c.Storage)
	}
	if c.Storage == StorageRedis && c.RedisURL == "" {
		return fmt.Errorf("FOGWALK_REDIS_URL required when FOGWALK_STORAGE=%s", StorageRedis)
	}
	if c.GridSize <= 0 || c.GridSize > MaxGridSize || c.GridSize%2 == 0 {
		return fmt.Errorf("FOGWALK_GRID_SIZE must be a positive odd number up to %d, got %d", MaxGridSize, c.GridSize)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.ShutdownTimeout <= 0 {
		return fmt.Errorf("FOGWALK_*_TIMEOUT must not be negative and FOGWALK_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.VisibleRadius <= 0 {
		return fmt.Errorf("FOGWALK_VISIBLE_RADIUS must be positive, got %d", c.VisibleRadius)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel
func (c Server) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("FOGWALK_LOG_LEVEL: %w", err)
	}
	return level, nil
}

// Addr returns the listen address
func (c Server) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
