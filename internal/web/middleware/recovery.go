package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/fogwalk/internal/middleware"
)

// Recovery creates panic recovery middleware for the stream endpoints.
// Headers may already be flushed, so the reply is best effort plain text.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, middleware.DefaultPanicHandler)
}
