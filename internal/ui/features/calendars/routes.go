// Package calendars serves the date picker's locale records as JSON.
package calendars

import (
	"github.com/go-chi/chi/v5"

	"github.com/new-arrivals-chi/arrivals/internal/content"
)

// SetupRoutes configures routes for the calendars feature.
func SetupRoutes(router chi.Router, src *content.Source) error {
	handlers := NewHandlers(src)

	router.Route("/api/calendars", func(r chi.Router) {
		r.Get("/", handlers.List)
		r.Get("/{tag}", handlers.Get)
	})

	return nil
}
