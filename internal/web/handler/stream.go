// Package handler serves the push endpoints: SSE per world and the WebSocket channel.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/fogwalk/internal/i18n"
	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/services/world"
	"github.com/mcoot/fogwalk/internal/web/middleware"
	"github.com/mcoot/fogwalk/internal/web/sse"
	"github.com/mcoot/fogwalk/internal/web/ws"
)

// StreamHandler opens update streams for authenticated players
type StreamHandler struct {
	worldService world.ServiceInterface
	hubManager   *sse.HubManager
	wsHub        *ws.Hub
	localizer    *i18n.Localizer
	logger       *slog.Logger
}

// NewStreamHandler creates a new StreamHandler
func NewStreamHandler(worldService world.ServiceInterface, hubManager *sse.HubManager, wsHub *ws.Hub, localizer *i18n.Localizer, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		worldService: worldService,
		hubManager:   hubManager,
		wsHub:        wsHub,
		localizer:    localizer,
		logger:       logger,
	}
}

// Events handles GET /events/{world_id}. Pass ?all=true to watch every player of the world.
func (h *StreamHandler) Events(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	if player == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	worldID := model.WorldID(mux.Vars(r)["world_id"])
	if !h.worldExists(w, r, worldID) {
		return
	}

	hub := h.hubManager.GetOrCreateHub(worldID)
	sse.ServeSSE(w, r, hub, player.ID, r.URL.Query().Get("all") == "true")
}

// WebSocket handles GET /ws?world_id=...
func (h *StreamHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	if player == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	worldID := model.WorldID(r.URL.Query().Get("world_id"))
	if worldID == "" {
		http.Error(w, "world_id is required", http.StatusBadRequest)
		return
	}
	if !h.worldExists(w, r, worldID) {
		return
	}

	locale := h.localizer.ResolveRequest(r).String()
	h.wsHub.Serve(w, r, worldID, player, locale)
}

func (h *StreamHandler) worldExists(w http.ResponseWriter, r *http.Request, worldID model.WorldID) bool {
	if _, err := h.worldService.Get(r.Context(), worldID); err != nil {
		if errors.Is(err, model.ErrWorldNotFound) {
			http.Error(w, "World not found", http.StatusNotFound)
			return false
		}
		h.logger.Error("stream world lookup failed",
			slog.String("world_id", string(worldID)),
			slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return false
	}
	return true
}
