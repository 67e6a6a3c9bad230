package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/fogwalk/internal/api/handler"
	"github.com/mcoot/fogwalk/internal/api/middleware"
	"github.com/mcoot/fogwalk/internal/i18n"
	"github.com/mcoot/fogwalk/internal/services/auth"
	"github.com/mcoot/fogwalk/internal/services/bot"
	"github.com/mcoot/fogwalk/internal/services/game"
	"github.com/mcoot/fogwalk/internal/services/world"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	WorldService   world.ServiceInterface
	GameController game.ControllerInterface
	BotService     *bot.Service
	Localizer      *i18n.Localizer
	// WorldClosers are told when a world is deleted (SSE hubs, WebSocket hub)
	WorldClosers []handler.WorldCloser
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	worldHandler := handler.NewWorldHandler(cfg.WorldService, cfg.Logger, cfg.WorldClosers...)
	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.BotService, cfg.Localizer, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Player routes (no auth required for creating players/logging in)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/players/resume", playerHandler.Resume).Methods(http.MethodPost)

	// Protected player routes
	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	playerProtected.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)

	// Listing worlds is open to spectators
	api.HandleFunc("/worlds", worldHandler.List).Methods(http.MethodGet)

	// World routes (require auth)
	worlds := api.PathPrefix("/worlds").Subrouter()
	worlds.Use(authMiddleware)
	worlds.HandleFunc("", worldHandler.Create).Methods(http.MethodPost)
	worlds.HandleFunc("/{world_id}", worldHandler.Get).Methods(http.MethodGet)
	worlds.HandleFunc("/{world_id}", worldHandler.Delete).Methods(http.MethodDelete)

	// Game routes
	worlds.HandleFunc("/{world_id}/join", gameHandler.Join).Methods(http.MethodPost)
	worlds.HandleFunc("/{world_id}/player", gameHandler.State).Methods(http.MethodGet)
	worlds.HandleFunc("/{world_id}/map", gameHandler.Map).Methods(http.MethodGet)
	worlds.HandleFunc("/{world_id}/moves", gameHandler.LegalMoves).Methods(http.MethodGet)
	worlds.HandleFunc("/{world_id}/roll", gameHandler.Roll).Methods(http.MethodPost)
	worlds.HandleFunc("/{world_id}/move", gameHandler.Move).Methods(http.MethodPost)
	worlds.HandleFunc("/{world_id}/end-turn", gameHandler.EndTurn).Methods(http.MethodPost)
	worlds.HandleFunc("/{world_id}/autoplay", gameHandler.Autoplay).Methods(http.MethodPost)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
