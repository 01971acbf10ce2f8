// Package home provides the landing page feature for the UI.
package home

import (
	"github.com/go-chi/chi/v5"

	"github.com/new-arrivals-chi/arrivals/internal/content"
	"github.com/new-arrivals-chi/arrivals/internal/filter"
	"github.com/new-arrivals-chi/arrivals/internal/ui/notifier"
)

// SetupRoutes configures routes for the home feature.
func SetupRoutes(
	router chi.Router,
	src *content.Source,
	profiles []filter.Profile,
	notify *notifier.Notifier,
	isDev bool,
) error {
	handlers := NewHandlers(src, profiles, notify, isDev)

	router.Get("/", handlers.HomePage)
	router.Get("/updates", handlers.HomePageUpdates)

	return nil
}
