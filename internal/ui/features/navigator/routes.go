// Package navigator serves the legal-resource decision tree.
package navigator

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/new-arrivals-chi/arrivals/internal/content"
	"github.com/new-arrivals-chi/arrivals/internal/legal"
	"github.com/new-arrivals-chi/arrivals/internal/ui/notifier"
)

// SetupRoutes configures routes for the navigator feature.
func SetupRoutes(
	router chi.Router,
	src *content.Source,
	opts legal.Options,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	isDev bool,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(src, opts, sessionStore, notify, isDev, logger)

	router.Route("/legal", func(r chi.Router) {
		r.Get("/", handlers.LegalPage)
		r.Get("/updates", handlers.LegalUpdates)
		r.Post("/nav/back", handlers.Back)
		r.Post("/nav/refresh", handlers.Refresh)
		r.Post("/nav/select/{name}", handlers.Select)
		r.Post("/nav/toggle/{name}", handlers.Toggle)
		r.Get("/{topic}", handlers.TopicPage)
	})

	return nil
}
