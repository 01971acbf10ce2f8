// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/new-arrivals-chi/arrivals/internal/content"
	"github.com/new-arrivals-chi/arrivals/internal/directory"
	"github.com/new-arrivals-chi/arrivals/internal/filter"
	"github.com/new-arrivals-chi/arrivals/internal/legal"
	calendarsFeature "github.com/new-arrivals-chi/arrivals/internal/ui/features/calendars"
	"github.com/new-arrivals-chi/arrivals/internal/ui/features/common"
	homeFeature "github.com/new-arrivals-chi/arrivals/internal/ui/features/home"
	navigatorFeature "github.com/new-arrivals-chi/arrivals/internal/ui/features/navigator"
	tablesFeature "github.com/new-arrivals-chi/arrivals/internal/ui/features/tables"
	"github.com/new-arrivals-chi/arrivals/internal/ui/notifier"
	"github.com/new-arrivals-chi/arrivals/internal/ui/resources"
)

// Deps is everything the feature routes need.
type Deps struct {
	Source       *content.Source
	Store        directory.Store
	Profiles     []filter.Profile
	NavOptions   legal.Options
	SessionStore sessions.Store
	Notifier     *notifier.Notifier
	IsDev        bool
	Logger       *slog.Logger
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps Deps) error {
	// Hot reload endpoint for dev mode
	if deps.IsDev {
		setupReload(router)
	}

	// Static assets
	router.Handle(resources.Prefix+"*", resources.Handler(deps.Logger))

	// Feature routes
	if err := homeFeature.SetupRoutes(router, deps.Source, deps.Profiles, deps.Notifier, deps.IsDev); err != nil {
		return err
	}

	if err := navigatorFeature.SetupRoutes(router, deps.Source, deps.NavOptions, deps.SessionStore, deps.Notifier, deps.IsDev, deps.Logger); err != nil {
		return err
	}

	if err := tablesFeature.SetupRoutes(router, deps.Source, deps.Store, deps.Profiles, deps.IsDev, deps.Logger); err != nil {
		return err
	}

	if err := calendarsFeature.SetupRoutes(router, deps.Source); err != nil {
		return err
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.NotFound(w, r, deps.Source.Bundle().Catalog, deps.IsDev)
	})

	return nil
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
