package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mcoot/fogwalk/internal/api/apierr"
	"github.com/mcoot/fogwalk/internal/api/middleware"
	"github.com/mcoot/fogwalk/internal/api/request"
	"github.com/mcoot/fogwalk/internal/api/response"
	"github.com/mcoot/fogwalk/internal/i18n"
	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/services/board"
	"github.com/mcoot/fogwalk/internal/services/bot"
	"github.com/mcoot/fogwalk/internal/services/game"
)

// GameHandler handles per-player game endpoints within a world
type GameHandler struct {
	gameController game.ControllerInterface
	botService     *bot.Service
	localizer      *i18n.Localizer
	logger         *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(
	gameController game.ControllerInterface,
	botService *bot.Service,
	localizer *i18n.Localizer,
	logger *slog.Logger,
) *GameHandler {
	return &GameHandler{
		gameController: gameController,
		botService:     botService,
		localizer:      localizer,
		logger:         logger,
	}
}

// Join handles POST /api/v1/worlds/{world_id}/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := worldID(r)

	var req request.JoinRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	locale := req.Locale
	if locale == "" {
		locale = h.localizer.ResolveRequest(r).String()
	}

	snapshot, err := h.gameController.Join(r.Context(), id, player, locale)
	if err != nil {
		WriteError(w, err)
		return
	}
	window, err := h.gameController.Map(r.Context(), id, player.ID, 0)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.JoinResponse{Player: snapshot, Map: window})
}

// State handles GET /api/v1/worlds/{world_id}/player
func (h *GameHandler) State(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	snapshot, err := h.gameController.State(r.Context(), worldID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, snapshot)
}

// Map handles GET /api/v1/worlds/{world_id}/map?size=N
func (h *GameHandler) Map(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, NewInvalidRequestError("size must be an integer"))
			return
		}
		size = n
		if size <= 0 || size > board.MaxWindowSize {
			WriteError(w, model.ErrInvalidWindow)
			return
		}
	}

	window, err := h.gameController.Map(r.Context(), worldID(r), player.ID, size)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, window)
}

// LegalMoves handles GET /api/v1/worlds/{world_id}/moves
func (h *GameHandler) LegalMoves(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := worldID(r)

	dirs, err := h.gameController.LegalMoves(r.Context(), id, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	snapshot, err := h.gameController.State(r.Context(), id, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LegalMovesFromModel(dirs, snapshot.StepsLeft))
}

// Roll handles POST /api/v1/worlds/{world_id}/roll
func (h *GameHandler) Roll(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	result, err := h.gameController.Roll(r.Context(), worldID(r), player.ID)
	if err != nil {
		h.writeCommandError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

// Move handles POST /api/v1/worlds/{world_id}/move
func (h *GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.MoveRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	// An unparseable direction still reaches the controller so the
	// rejection is published like any other invalid move
	dir, err := model.ParseDirection(req.Direction)
	if err != nil {
		dir = model.Direction(-1)
	}

	result, err := h.gameController.Move(r.Context(), worldID(r), player.ID, dir)
	if err != nil {
		h.writeCommandError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

// EndTurn handles POST /api/v1/worlds/{world_id}/end-turn
func (h *GameHandler) EndTurn(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	snapshot, err := h.gameController.EndTurn(r.Context(), worldID(r), player.ID)
	if err != nil {
		h.writeCommandError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, snapshot)
}

// Autoplay handles POST /api/v1/worlds/{world_id}/autoplay
func (h *GameHandler) Autoplay(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.AutoplayRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	report, err := h.botService.PlayTurn(r.Context(), worldID(r), player.ID, req.Strategy)
	if err != nil {
		h.writeCommandError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, report)
}

// writeCommandError renders rejected transitions in the requester's language
func (h *GameHandler) writeCommandError(w http.ResponseWriter, r *http.Request, err error) {
	if !model.IsInvalidTransition(err) {
		if apierr.Status(err) == http.StatusInternalServerError {
			h.logger.Error("game command failed",
				slog.String("world_id", string(worldID(r))),
				slog.Any("error", err))
		}
		WriteError(w, err)
		return
	}
	locale := h.localizer.ResolveRequest(r).String()
	apierr.WriteLocalizedError(w, err, h.localizer.RenderError(locale, err))
}
