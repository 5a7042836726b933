package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/eventease/internal/handlers"
	middlewareCustom "github.com/BradenHooton/eventease/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RegisterRoutes registers the receipt preview routes
func RegisterRoutes(router chi.Router, previewHandler *handlers.ReceiptPreviewHandler, rateLimit middlewareCustom.RateLimitConfig) {
	router.Group(func(r chi.Router) {
		r.Use(middlewareCustom.RateLimitByIP(rateLimit))
		r.Get("/blob/{token}", previewHandler.ServeBlob)
		r.Head("/blob/{token}", previewHandler.ServeBlob)
	})
}

// NewRouter builds the preview server's router with the standard
// middleware stack.
func NewRouter(previewHandler *handlers.ReceiptPreviewHandler, rateLimit middlewareCustom.RateLimitConfig, env string, logger *slog.Logger) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: env}))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))

	RegisterRoutes(router, previewHandler, rateLimit)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	return router
}
