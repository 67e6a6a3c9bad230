package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/fogwalk/internal/config"
	"github.com/mcoot/fogwalk/internal/dependencies/clock"
	"github.com/mcoot/fogwalk/internal/dependencies/random"
	"github.com/mcoot/fogwalk/internal/i18n"
	"github.com/mcoot/fogwalk/internal/services/auth"
	"github.com/mcoot/fogwalk/internal/services/bot"
	"github.com/mcoot/fogwalk/internal/services/events"
	"github.com/mcoot/fogwalk/internal/services/game"
	"github.com/mcoot/fogwalk/internal/services/world"
	"github.com/mcoot/fogwalk/internal/storage"
	"github.com/mcoot/fogwalk/internal/storage/memory"
	redisstorage "github.com/mcoot/fogwalk/internal/storage/redis"
	"github.com/mcoot/fogwalk/internal/updates"
	"github.com/mcoot/fogwalk/internal/web/sse"
	"github.com/mcoot/fogwalk/internal/web/ws"
)

// Storage type constants
const (
	StorageTypeMemory = config.StorageMemory
	StorageTypeRedis  = config.StorageRedis
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Game core
	Registry  *events.Registry
	Localizer *i18n.Localizer
	Bus       *updates.Bus

	// Services
	AuthService    *auth.Service
	WorldService   *world.Service
	GameController *game.Controller
	BotService     *bot.Service

	// Push transports
	HubManager  *sse.HubManager
	Broadcaster *sse.Broadcaster
	WSHub       *ws.Hub

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// Zero fields fall back to auth.DefaultConfig()
	AuthConfig auth.Config
	// GameConfig holds the window and visibility settings (optional)
	// Zero fields fall back to game.DefaultConfig()
	GameConfig game.Config
	// DefaultLocale is used for players who never sent one. Defaults to "en".
	DefaultLocale string
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// ConfigFromServer maps environment settings to a factory Config
func ConfigFromServer(cfg config.Server, logger *slog.Logger) Config {
	out := Config{
		AuthConfig: auth.Config{
			SessionDuration:   cfg.AuthSessionDuration,
			IdentityFreshness: cfg.IdentityFreshness,
		},
		GameConfig: game.Config{
			WindowSize:      cfg.GridSize,
			VisibleRadius:   cfg.VisibleRadius,
			VisibilityScale: cfg.VisibilityScale,
		},
		DefaultLocale: cfg.DefaultLocale,
		Logger:        logger,
		StorageType:   cfg.Storage,
	}
	if cfg.Storage == config.StorageRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.SessionTTL = cfg.SessionTTL
		out.RedisConfig = &redisCfg
	}
	return out
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	return newWithDependencies(store, clock.New(), random.New(), cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = "en"
	}
	gameCfg := cfg.GameConfig
	defaults := game.DefaultConfig()
	if gameCfg.VisibleRadius <= 0 {
		gameCfg.VisibleRadius = defaults.VisibleRadius
	}
	if gameCfg.VisibilityScale == 0 {
		gameCfg.VisibilityScale = defaults.VisibilityScale
	}

	registry := events.NewDefaultRegistry(logger)
	localizer := i18n.New(cfg.DefaultLocale)
	bus := updates.NewBus(logger)

	authService := auth.New(store, clk, logger, cfg.AuthConfig)
	worldService := world.New(store, clk, logger)
	gameController := game.NewController(store, registry, localizer, bus, clk, rnd, logger, gameCfg)
	worldService.OnDelete(gameController.Forget)
	botService := bot.NewService(gameController, bot.DefaultStrategies(rnd, gameCfg.VisibleRadius), logger)

	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, bus, logger)
	broadcaster.Start()
	wsHub := ws.NewHub(gameController, bus, localizer, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Registry:       registry,
		Localizer:      localizer,
		Bus:            bus,
		AuthService:    authService,
		WorldService:   worldService,
		GameController: gameController,
		BotService:     botService,
		HubManager:     hubManager,
		Broadcaster:    broadcaster,
		WSHub:          wsHub,
		logger:         logger,
	}
}

// Bootstrap makes sure a world named defaultWorld exists so a fresh server is playable
func (a *App) Bootstrap(ctx context.Context, defaultWorld string) error {
	if defaultWorld == "" {
		return nil
	}
	w, err := a.WorldService.EnsureDefault(ctx, defaultWorld)
	if err != nil {
		return err
	}
	a.logger.Info("default world ready",
		slog.String("world_id", string(w.ID)),
		slog.String("name", w.Name))
	return nil
}

// Close stops the push transports and releases storage connections
func (a *App) Close() error {
	a.WSHub.Close()
	a.Broadcaster.Stop()
	a.HubManager.Close()
	a.Bus.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
