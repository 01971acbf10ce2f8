package home

import (
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/new-arrivals-chi/arrivals/internal/content"
	"github.com/new-arrivals-chi/arrivals/internal/filter"
	"github.com/new-arrivals-chi/arrivals/internal/ui/features/common"
	"github.com/new-arrivals-chi/arrivals/internal/ui/features/common/components"
	"github.com/new-arrivals-chi/arrivals/internal/ui/notifier"
)

// Handlers provides HTTP handlers for the home feature.
type Handlers struct {
	source   *content.Source
	profiles []filter.Profile
	notifier *notifier.Notifier
	isDev    bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(src *content.Source, profiles []filter.Profile, notify *notifier.Notifier, isDev bool) *Handlers {
	return &Handlers{
		source:   src,
		profiles: profiles,
		notifier: notify,
		isDev:    isDev,
	}
}

// HomePage renders the landing page.
func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	if err := components.HomePage(h.buildHomeData(r)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HomePageUpdates is the long-lived SSE endpoint for the landing page.
// It re-sends the link list whenever the content is reloaded. It does NOT
// send initial state; HomePage already rendered it.
func (h *Handlers) HomePageUpdates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := sse.PatchElementTempl(components.HomeLinks(h.buildHomeData(r))); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// buildHomeData assembles the landing page for the request's language.
func (h *Handlers) buildHomeData(r *http.Request) components.HomeData {
	b := h.source.Bundle()
	t := common.Language(r, b.Catalog)

	page := common.NewPage(r, b.Catalog, t, "resources", h.isDev)
	page.Path = "/"

	data := components.HomeData{
		Page:   page,
		Intro:  t.Text("home_intro", ""),
		Tables: make([]components.TableLink, 0, len(h.profiles)),
	}
	for _, p := range h.profiles {
		data.Tables = append(data.Tables, components.TableLink{
			Name:  p.Name,
			Title: t.Text(p.Title, p.Name),
		})
	}
	return data
}
