package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 21, cfg.GridSize)
	assert.Equal(t, 3, cfg.VisibleRadius)
	assert.InDelta(t, 1.0, cfg.VisibilityScale, 1e-9)
	assert.Equal(t, "en", cfg.DefaultLocale)
	assert.Equal(t, 7*24*time.Hour, cfg.IdentityFreshness)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, time.Minute, cfg.WriteTimeout)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FOGWALK_HOST", "127.0.0.1")
	t.Setenv("FOGWALK_PORT", "9090")
	t.Setenv("FOGWALK_STORAGE", "redis")
	t.Setenv("FOGWALK_REDIS_URL", "redis://cache:6379/2")
	t.Setenv("FOGWALK_GRID_SIZE", "15")
	t.Setenv("FOGWALK_VISIBILITY_SCALE", "1.5")
	t.Setenv("FOGWALK_DEFAULT_LOCALE", "ru")
	t.Setenv("FOGWALK_LOG_LEVEL", "debug")
	t.Setenv("FOGWALK_WRITE_TIMEOUT", "0s")
	t.Setenv("FOGWALK_SHUTDOWN_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, StorageRedis, cfg.Storage)
	assert.Equal(t, "redis://cache:6379/2", cfg.RedisURL)
	assert.Equal(t, 15, cfg.GridSize)
	assert.InDelta(t, 1.5, cfg.VisibilityScale, 1e-9)
	assert.Equal(t, "ru", cfg.DefaultLocale)
	assert.Zero(t, cfg.WriteTimeout)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("FOGWALK_PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "parse env:"))
}

func TestValidate(t *testing.T) {
	base, err := Load()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Server)
		want   string
	}{
		{"unknown storage", func(c *Server) { c.Storage = "postgres" }, "FOGWALK_STORAGE"},
		{"redis without url", func(c *Server) { c.Storage = StorageRedis; c.RedisURL = "" }, "FOGWALK_REDIS_URL"},
		{"even grid", func(c *Server) { c.GridSize = 20 }, "FOGWALK_GRID_SIZE"},
		{"huge grid", func(c *Server) { c.GridSize = 1001 }, "FOGWALK_GRID_SIZE"},
		{"negative read timeout", func(c *Server) { c.ReadTimeout = -time.Second }, "TIMEOUT"},
		{"no shutdown timeout", func(c *Server) { c.ShutdownTimeout = 0 }, "FOGWALK_SHUTDOWN_TIMEOUT"},
		{"zero radius", func(c *Server) { c.VisibleRadius = 0 }, "FOGWALK_VISIBLE_RADIUS"},
		{"bad log level", func(c *Server) { c.LogLevel = "loud" }, "FOGWALK_LOG_LEVEL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
