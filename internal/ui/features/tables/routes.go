// Package tables serves the filterable resource tables and resource detail
// pages.
package tables

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/new-arrivals-chi/arrivals/internal/content"
	"github.com/new-arrivals-chi/arrivals/internal/directory"
	"github.com/new-arrivals-chi/arrivals/internal/filter"
)

// SetupRoutes configures routes for the tables feature.
func SetupRoutes(
	router chi.Router,
	src *content.Source,
	store directory.Store,
	profiles []filter.Profile,
	isDev bool,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(src, store, profiles, isDev, logger)

	router.Get("/resources/{table}", handlers.TablePage)
	router.Get("/resources/{table}/filter", handlers.FilterRows)
	router.Get("/info/{id}", handlers.InfoPage)

	return nil
}
