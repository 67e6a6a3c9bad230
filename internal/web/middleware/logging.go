package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/fogwalk/internal/middleware"
)

// Logging creates logging middleware for the stream endpoints
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}
