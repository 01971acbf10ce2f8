package tables

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/new-arrivals-chi/arrivals/internal/content"
	"github.com/new-arrivals-chi/arrivals/internal/directory"
	"github.com/new-arrivals-chi/arrivals/internal/filter"
	"github.com/new-arrivals-chi/arrivals/internal/locale"
	"github.com/new-arrivals-chi/arrivals/internal/ui/features/common"
	"github.com/new-arrivals-chi/arrivals/internal/ui/features/common/components"
)

// Handlers provides HTTP handlers for the tables feature.
type Handlers struct {
	source   *content.Source
	store    directory.Store
	profiles []filter.Profile
	isDev    bool
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(src *content.Source, store directory.Store, profiles []filter.Profile, isDev bool, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		source:   src,
		store:    store,
		profiles: profiles,
		isDev:    isDev,
		logger:   logger,
	}
}

// TablePage renders a table with every active resource. Criteria given in
// the query string are applied before the page is sent.
func (h *Handlers) TablePage(w http.ResponseWriter, r *http.Request) {
	b := h.source.Bundle()
	profile, ok := filter.FindProfile(h.profiles, chi.URLParam(r, "table"))
	if !ok {
		common.NotFound(w, r, b.Catalog, h.isDev)
		return
	}

	t := common.Language(r, b.Catalog)
	criteria := profile.CriteriaFrom(r.URL.Query().Get)

	data, err := h.buildTableData(r.Context(), profile, criteria, t)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data.Page = common.NewPage(r, b.Catalog, t, profile.Title, h.isDev)
	data.Heading = data.Page.Title

	if err := components.ResourcesPage(data).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// FilterRows re-evaluates the table for the dropdown values the browser
// sends as signals and patches the table body.
func (h *Handlers) FilterRows(w http.ResponseWriter, r *http.Request) {
	b := h.source.Bundle()
	profile, ok := filter.FindProfile(h.profiles, chi.URLParam(r, "table"))
	if !ok {
		http.Error(w, fmt.Sprintf("unknown table %q", chi.URLParam(r, "table")), http.StatusNotFound)
		return
	}

	// Read signals BEFORE creating SSE
	signals := map[string]any{}
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(fmt.Errorf("failed to read signals: %w", err))
		return
	}
	criteria := profile.CriteriaFrom(func(id string) string {
		switch v := signals[id].(type) {
		case string:
			return v
		case nil:
			return ""
		default:
			return fmt.Sprint(v)
		}
	})

	sse := datastar.NewSSE(w, r)

	t := common.Language(r, b.Catalog)
	data, err := h.buildTableData(r.Context(), profile, criteria, t)
	if err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	data.Page = common.NewPage(r, b.Catalog, t, profile.Title, h.isDev)

	if err := sse.PatchElementTempl(components.ResourceTable(data)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// buildTableData loads active resources and applies the criteria.
func (h *Handlers) buildTableData(ctx context.Context, p filter.Profile, criteria filter.Criteria, t *locale.Table) (components.ResourcesData, error) {
	resources, err := h.store.List(ctx, directory.ListOptions{Status: directory.StatusActive})
	if err != nil {
		return components.ResourcesData{}, err
	}
	rows := directory.Rows(p, resources)
	visible := p.Filter().Apply(criteria, rows)

	data := components.ResourcesData{
		Table:     p.Name,
		NameLabel: t.Text("organization", "Organization"),
		AllLabel:  t.Text("all", "All"),
		NoResults: t.Text("no_results", "No results"),
		Columns:   make([]components.ColumnView, 0, filter.Columns),
		Rows:      make([]components.RowView, 0, len(rows)),
	}

	selected := make(map[string]string, filter.Columns)
	for i, col := range p.Columns {
		data.Columns = append(data.Columns, components.ColumnView{
			ID:       col.ID,
			Label:    t.Text(col.Label, locale.KeyNotFound),
			Options:  p.Options(i, rows),
			Selected: criteria[i],
		})
		selected[col.ID] = criteria[i]
	}
	signals, err := json.Marshal(selected)
	if err != nil {
		return components.ResourcesData{}, err
	}
	data.Signals = string(signals)

	for i, row := range rows {
		data.Rows = append(data.Rows, components.RowView{
			ID:      row.ID,
			Name:    resources[i].Name,
			Cells:   row.Cells[:],
			Visible: visible[i],
		})
		if visible[i] {
			data.VisibleCount++
		}
	}
	return data, nil
}

// infoFields lists the attributes shown on the detail page, in order.
var infoFields = []string{"phone", "street_address", "zip_code", "city", "state", "neighborhood", "supplies", "hours", "languages"}

// InfoPage renders the public detail page of an active resource.
func (h *Handlers) InfoPage(w http.ResponseWriter, r *http.Request) {
	b := h.source.Bundle()
	res, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, directory.ErrNotFound) || (err == nil && res.Status != directory.StatusActive) {
		common.NotFound(w, r, b.Catalog, h.isDev)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	t := common.Language(r, b.Catalog)
	page := common.NewPage(r, b.Catalog, t, "resources", h.isDev)
	page.Title = res.Name

	fields := make([]components.InfoField, 0, len(infoFields))
	for _, f := range infoFields {
		fields = append(fields, components.InfoField{Label: t.Text(f, f), Value: res.Field(f)})
	}

	if err := components.InfoPage(components.InfoData{
		Page:     page,
		Resource: res,
		Fields:   fields,
	}).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
