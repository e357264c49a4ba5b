package explorer

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/dataexplorer/internal/dashboard"
	"github.com/leapstack-labs/dataexplorer/internal/ui/notifier"
)

// SetupRoutes registers explorer routes on the router.
func SetupRoutes(
	router chi.Router,
	registry *dashboard.Registry,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
	isDev bool,
) error {
	handlers := NewHandlers(registry, sessionStore, notify, logger, isDev)

	router.Get("/", handlers.Page)
	router.Get("/views", handlers.ViewsSSE)
	router.Get("/updates", handlers.Updates)
	router.Get("/export/{format}", handlers.Export)
	router.Get("/healthz", handlers.Healthz)

	return nil
}
