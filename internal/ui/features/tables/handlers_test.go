package tables

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/new-arrivals-chi/arrivals/internal/directory"
	"github.com/new-arrivals-chi/arrivals/internal/testutil"
	"github.com/new-arrivals-chi/arrivals/internal/ui/features"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

var testResources = []features.TestResource{
	{ID: "a", Name: "Alivio Medical Center", ZipCode: "60608", Neighborhood: "Pilsen", Supplies: []string{"Medicine"}, Hours: "Mon-Fri"},
	{ID: "b", Name: "Pilsen Food Pantry", ZipCode: "60608", Neighborhood: "Pilsen", Supplies: []string{"Food", "Clothing"}, Hours: "Sat", Languages: []string{"Spanish", "English"}},
	{ID: "c", Name: "Uptown Closet", ZipCode: "60640", Neighborhood: "Uptown", Supplies: []string{"Clothing", "Hygiene products"}, Hours: "Tue-Thu", Languages: []string{"English"}},
	{ID: "d", Name: "Hidden Org", ZipCode: "60608", Neighborhood: "Pilsen", Supplies: []string{"Food"}, Status: directory.StatusHidden},
}

func setupTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	fixture := features.SetupTestFixture(t, testResources...)
	return NewHandlers(fixture.Source, fixture.Store, fixture.Profiles, false, testutil.NewTestLogger(t))
}

func visibleRows(t *testing.T, markup string) []string {
	t.Helper()
	var out []string
	for _, id := range []string{"a", "b", "c", "d"} {
		n := features.ElementByID(t, markup, "row-"+id)
		if n != nil && !features.HasAttr(n, "hidden") {
			out = append(out, id)
		}
	}
	return out
}

// =============================================================================
// TablePage
// =============================================================================

func TestTablePage(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		table       string
		wantStatus  int
		wantVisible []string
		wantBody    []string
	}{
		{
			name:        "health table without criteria",
			path:        "/resources/health",
			table:       "health",
			wantStatus:  http.StatusOK,
			wantVisible: []string{"a", "b", "c"},
			wantBody:    []string{"<h1>Health care locations</h1>", `id="zip_code"`, `value="60640"`},
		},
		{
			name:        "criteria from the query string",
			path:        "/resources/health?zip_code=60608",
			table:       "health",
			wantStatus:  http.StatusOK,
			wantVisible: []string{"a", "b"},
			wantBody:    []string{`<option value="60608" selected>`},
		},
		{
			name:        "exact match is case sensitive",
			path:        "/resources/health?city=chicago",
			table:       "health",
			wantStatus:  http.StatusOK,
			wantVisible: nil,
			wantBody:    []string{"No locations match your selection."},
		},
		{
			name:        "token mode substring",
			path:        "/resources/supplies?supplies=cloth",
			table:       "supplies",
			wantStatus:  http.StatusOK,
			wantVisible: []string{"b", "c"},
			wantBody:    []string{`value="Hygiene products"`, `value="Medicine"`},
		},
		{
			name:        "token options keep their spelling",
			path:        "/resources/supplies?languages=spanish",
			table:       "supplies",
			wantStatus:  http.StatusOK,
			wantVisible: []string{"b"},
			wantBody:    []string{`value="English"`, `value="Spanish"`, `value="Pilsen"`, `value="Tue-Thu"`},
		},
		{
			name:        "spanish labels",
			path:        "/resources/supplies?lang=es",
			table:       "supplies",
			wantStatus:  http.StatusOK,
			wantVisible: []string{"a", "b", "c"},
			wantBody:    []string{"<h1>Suministros</h1>", "Vecindario"},
		},
		{
			name:       "unknown table",
			path:       "/resources/nope",
			table:      "nope",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupTestHandlers(t)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req = features.RequestWithPathParam(req, "table", tt.table)
			rec := httptest.NewRecorder()
			h.TablePage(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := rec.Body.String()
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantVisible, visibleRows(t, body))
				assert.Nil(t, features.ElementByID(t, body, "row-d"), "hidden resources are not listed")
			}
			for _, want := range tt.wantBody {
				assert.Contains(t, body, want)
			}
		})
	}
}

func TestTablePage_HeadingsAreDistinct(t *testing.T) {
	h := setupTestHandlers(t)

	for _, table := range []string{"health", "supplies"} {
		t.Run(table, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/resources/"+table, nil)
			req = features.RequestWithPathParam(req, "table", table)
			rec := httptest.NewRecorder()
			h.TablePage(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)

			body := rec.Body.String()
			start := strings.Index(body, "<thead>")
			end := strings.Index(body, "</thead>")
			require.True(t, start >= 0 && end > start)
			headings := regexp.MustCompile(`<th>([^<]*)</th>`).FindAllStringSubmatch(body[start:end], -1)

			seen := make(map[string]bool)
			for _, m := range headings {
				assert.False(t, seen[m[1]], "heading %q repeated", m[1])
				seen[m[1]] = true
			}
			assert.Len(t, headings, 5)
			assert.Equal(t, 1, strings.Count(body[start:end], "<th>Organization</th>"))
		})
	}
}

// =============================================================================
// FilterRows
// =============================================================================

func TestFilterRows(t *testing.T) {
	tests := []struct {
		name        string
		table       string
		signals     string
		wantVisible []string
		wantEmpty   bool
	}{
		{
			name:        "no signals shows everything",
			table:       "supplies",
			signals:     `{}`,
			wantVisible: []string{"a", "b", "c"},
		},
		{
			name:        "single token criterion",
			table:       "supplies",
			signals:     `{"supplies":"FOOD"}`,
			wantVisible: []string{"b"},
		},
		{
			name:        "criteria are combined with AND",
			table:       "supplies",
			signals:     `{"supplies":"clothing","neighborhood":"uptown"}`,
			wantVisible: []string{"c"},
		},
		{
			name:      "no row passes",
			table:     "supplies",
			signals:   `{"supplies":"food","neighborhood":"uptown"}`,
			wantEmpty: true,
		},
		{
			name:        "exact table",
			table:       "health",
			signals:     `{"zip_code":"60640","street_address":""}`,
			wantVisible: []string{"c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupTestHandlers(t)

			target := "/resources/" + tt.table + "/filter?datastar=" + url.QueryEscape(tt.signals)
			req := httptest.NewRequest(http.MethodGet, target, nil)
			req = features.RequestWithPathParam(req, "table", tt.table)
			rec := httptest.NewRecorder()
			h.FilterRows(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			frag := features.SSEElements(rec.Body.String())
			assert.Contains(t, frag, `id="resource-rows"`)
			assert.NotContains(t, frag, "<html", "only the table fragment is patched")

			if tt.wantEmpty {
				assert.Empty(t, visibleRows(t, frag))
				assert.Contains(t, frag, "no-results")
				return
			}
			assert.Equal(t, tt.wantVisible, visibleRows(t, frag))
			assert.NotContains(t, frag, "no-results")
		})
	}
}

func TestFilterRows_UnknownTable(t *testing.T) {
	h := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/resources/nope/filter", nil)
	req = features.RequestWithPathParam(req, "table", "nope")
	rec := httptest.NewRecorder()
	h.FilterRows(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// InfoPage
// =============================================================================

func TestInfoPage(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "active resource",
			id:         "b",
			wantStatus: http.StatusOK,
			wantBody:   []string{"<h1>Pilsen Food Pantry</h1>", "Food, Clothing", "60608"},
		},
		{
			name:       "hidden resource",
			id:         "d",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "missing resource",
			id:         "zzz",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupTestHandlers(t)

			req := httptest.NewRequest(http.MethodGet, "/info/"+tt.id, nil)
			req = features.RequestWithPathParam(req, "id", tt.id)
			rec := httptest.NewRecorder()
			h.InfoPage(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}
