package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mcoot/fogwalk/internal/api/apierr"
	"github.com/mcoot/fogwalk/internal/middleware"
)

// Recovery turns a handler panic into a JSON INTERNAL_ERROR naming the request ID,
// so a player's report can be matched to the logged stack.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	requestID := w.Header().Get(middleware.RequestIDHeader)
	if requestID == "" {
		requestID = middleware.RequestID(r.Context())
	}
	if requestID == "" {
		apierr.WriteError(w, apierr.NewInternalError())
		return
	}
	apierr.WriteLocalizedError(w, apierr.NewInternalError(), fmt.Sprintf("Internal server error (request %s)", requestID))
}
