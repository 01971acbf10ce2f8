package calendars

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/new-arrivals-chi/arrivals/internal/content"
	"github.com/new-arrivals-chi/arrivals/internal/locale"
)

// ListResponse is the body of GET /api/calendars.
type ListResponse struct {
	Tags []string `json:"tags"`
}

// CalendarResponse is the body of GET /api/calendars/{tag}. Tag is the
// calendar that was matched, which can differ from the requested one.
type CalendarResponse struct {
	Tag      string           `json:"tag"`
	Calendar *locale.Calendar `json:"calendar"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handlers provides HTTP handlers for the calendars feature.
type Handlers struct {
	source *content.Source
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(src *content.Source) *Handlers {
	return &Handlers{source: src}
}

// List returns the tags of every loaded calendar.
func (h *Handlers) List(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ListResponse{Tags: h.source.Bundle().CalendarTags()})
}

// Get returns the calendar that best matches the tag in the path.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	want := chi.URLParam(r, "tag")
	tag, cal, ok := h.source.Bundle().CalendarFor(want)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("no calendar for %q", want)})
		return
	}
	w.Header().Set("Content-Language", tag)
	writeJSON(w, http.StatusOK, CalendarResponse{Tag: tag, Calendar: cal})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
