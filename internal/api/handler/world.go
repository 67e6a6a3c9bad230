package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/fogwalk/internal/api/middleware"
	"github.com/mcoot/fogwalk/internal/api/request"
	"github.com/mcoot/fogwalk/internal/api/response"
	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/services/world"
)

// WorldCloser drops live connections for a deleted world
type WorldCloser interface {
	CloseWorld(worldID model.WorldID)
}

// WorldHandler handles world-related endpoints
type WorldHandler struct {
	worldService world.ServiceInterface
	closers      []WorldCloser
	logger       *slog.Logger
}

// NewWorldHandler creates a new world handler.
// Each closer is told when a world is deleted.
func NewWorldHandler(worldService world.ServiceInterface, logger *slog.Logger, closers ...WorldCloser) *WorldHandler {
	return &WorldHandler{
		worldService: worldService,
		closers:      closers,
		logger:       logger,
	}
}

// List handles GET /api/v1/worlds
func (h *WorldHandler) List(w http.ResponseWriter, r *http.Request) {
	worlds, err := h.worldService.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.WorldListFromModel(worlds))
}

// Create handles POST /api/v1/worlds
func (h *WorldHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.CreateWorldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	created, err := h.worldService.Create(r.Context(), req.Name, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.WorldFromModel(created))
}

// Get handles GET /api/v1/worlds/{world_id}
func (h *WorldHandler) Get(w http.ResponseWriter, r *http.Request) {
	summary, err := h.worldService.Get(r.Context(), worldID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.WorldFromSummary(summary))
}

// Delete handles DELETE /api/v1/worlds/{world_id}
func (h *WorldHandler) Delete(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := worldID(r)

	if err := h.worldService.Delete(r.Context(), id, player.ID); err != nil {
		WriteError(w, err)
		return
	}

	for _, c := range h.closers {
		c.CloseWorld(id)
	}

	response.NoContent(w)
}

func worldID(r *http.Request) model.WorldID {
	return model.WorldID(mux.Vars(r)["world_id"])
}
