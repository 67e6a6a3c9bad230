package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeWorldNotFound      = "WORLD_NOT_FOUND"
	CodeNotWorldOwner      = "NOT_WORLD_OWNER"
	CodeNotJoined          = "NOT_JOINED"
	CodeNoActiveRoll       = "NO_ACTIVE_ROLL"
	CodeNoStepsLeft        = "NO_STEPS_LEFT"
	CodeSkipPending        = "SKIP_PENDING"
	CodeAlreadyVisited     = "ALREADY_VISITED"
	CodeTurnInProgress     = "TURN_IN_PROGRESS"
	CodeStepsRemaining     = "STEPS_REMAINING"
	CodeInvalidDirection   = "INVALID_DIRECTION"
	CodeInvalidWindow      = "INVALID_WINDOW"
	CodeUnknownStrategy    = "UNKNOWN_STRATEGY"
	CodeLoginExists        = "LOGIN_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeIdentityExpired    = "IDENTITY_EXPIRED"
	CodePasswordNeeded     = "PASSWORD_NEEDED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	write(w, toHTTPError(err))
}

// WriteLocalizedError is WriteError with the message replaced by a player-facing one
func WriteLocalizedError(w http.ResponseWriter, err error, message string) {
	he := *toHTTPError(err)
	if message != "" {
		he.apiError.Message = message
	}
	write(w, &he)
}

func write(w http.ResponseWriter, he *httpError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrWorldNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeWorldNotFound, "World not found"}}
	case errors.Is(err, model.ErrWorldNameRequired):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "World name is required"}}
	case errors.Is(err, model.ErrNotWorldOwner):
		return &httpError{http.StatusForbidden, APIError{CodeNotWorldOwner, "Only the world's creator can do that"}}
	case errors.Is(err, model.ErrNotJoined), errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNotJoined, "Join the world first"}}

	// Turn transitions
	case errors.Is(err, model.ErrNoActiveRoll):
		return &httpError{http.StatusConflict, APIError{CodeNoActiveRoll, "No active roll"}}
	case errors.Is(err, model.ErrNoStepsLeft):
		return &httpError{http.StatusConflict, APIError{CodeNoStepsLeft, "No steps left this turn"}}
	case errors.Is(err, model.ErrSkipPending):
		return &httpError{http.StatusConflict, APIError{CodeSkipPending, "A skipped turn is pending"}}
	case errors.Is(err, model.ErrAlreadyVisited):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyVisited, "Cell already visited this turn"}}
	case errors.Is(err, model.ErrTurnInProgress):
		return &httpError{http.StatusConflict, APIError{CodeTurnInProgress, "A turn is already in progress"}}
	case errors.Is(err, model.ErrStepsRemaining):
		return &httpError{http.StatusConflict, APIError{CodeStepsRemaining, "Steps remaining"}}
	case errors.Is(err, model.ErrInvalidDirection):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidDirection, "Direction must be UP, DOWN, LEFT or RIGHT"}}
	case errors.Is(err, model.ErrInvalidCoordinate):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Invalid coordinate"}}
	case errors.Is(err, model.ErrInvalidWindow):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidWindow, "Window size must be a positive odd number no larger than 101"}}
	case errors.Is(err, model.ErrUnknownStrategy):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownStrategy, "Unknown autoplay strategy"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid login or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrLoginExists):
		return &httpError{http.StatusConflict, APIError{CodeLoginExists, "Login already exists"}}
	case errors.Is(err, auth.ErrLoginRequired):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Login and password are required"}}
	case errors.Is(err, auth.ErrIdentityExpired):
		return &httpError{http.StatusGone, APIError{CodeIdentityExpired, "Identity expired, create a new guest"}}
	case errors.Is(err, auth.ErrPasswordNeeded):
		return &httpError{http.StatusForbidden, APIError{CodePasswordNeeded, "Registered players must log in with a password"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
