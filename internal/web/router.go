package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/fogwalk/internal/i18n"
	"github.com/mcoot/fogwalk/internal/services/auth"
	"github.com/mcoot/fogwalk/internal/services/world"
	"github.com/mcoot/fogwalk/internal/web/handler"
	"github.com/mcoot/fogwalk/internal/web/middleware"
	"github.com/mcoot/fogwalk/internal/web/sse"
	"github.com/mcoot/fogwalk/internal/web/ws"
)

// RouterConfig holds configuration for the stream router
type RouterConfig struct {
	Logger       *slog.Logger
	AuthService  *auth.Service
	WorldService world.ServiceInterface
	Localizer    *i18n.Localizer
	HubManager   *sse.HubManager
	WSHub        *ws.Hub
}

// NewRouter creates the router for the SSE and WebSocket endpoints
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	streamHandler := handler.NewStreamHandler(cfg.WorldService, cfg.HubManager, cfg.WSHub, cfg.Localizer, cfg.Logger)

	protected := r.NewRoute().Subrouter()
	protected.Use(middleware.Auth(cfg.AuthService))
	protected.HandleFunc("/events/{world_id}", streamHandler.Events).Methods(http.MethodGet)
	protected.HandleFunc("/ws", streamHandler.WebSocket).Methods(http.MethodGet)

	return r
}
