// Package common provides shared utilities for UI features.
package common

import (
	"net/http"

	"github.com/new-arrivals-chi/arrivals/internal/locale"
	"github.com/new-arrivals-chi/arrivals/internal/ui/features/common/components"
)

// LangParam is the query parameter selecting the page language.
const LangParam = "lang"

// Language picks the string table for a request: the lang query parameter
// wins, then Accept-Language, then the default language.
func Language(r *http.Request, cat *locale.Catalog) *locale.Table {
	if lang := r.URL.Query().Get(LangParam); lang != "" {
		return cat.Resolve(lang)
	}
	return cat.Resolve(r.Header.Get("Accept-Language"))
}

// NewPage fills the shared page chrome. title is a locale key.
func NewPage(r *http.Request, cat *locale.Catalog, t *locale.Table, title string, isDev bool) components.Page {
	p := components.Page{
		Title:       t.Text(title, locale.KeyNotFound),
		SiteTitle:   t.Text("site_title", "New Arrivals Chicago"),
		LegalLabel:  t.Text("legal", "Legal help"),
		Lang:        locale.Code(t),
		Dir:         "ltr",
		Path:        r.URL.Path,
		IsDev:       isDev,
		DatastarURL: components.DatastarURL,
	}
	if alt := alternate(cat, t); alt != nil {
		p.AltLang = locale.Code(alt)
		p.AltLangLabel = alt.Text("language_name", p.AltLang)
	}
	return p
}

// alternate returns the first supported language other than t's, used for
// the language switch link.
func alternate(cat *locale.Catalog, t *locale.Table) *locale.Table {
	for _, tag := range cat.Tags() {
		if tag != t.Tag() {
			return cat.Resolve(tag.String())
		}
	}
	return nil
}

// NotFound renders the 404 page.
func NotFound(w http.ResponseWriter, r *http.Request, cat *locale.Catalog, isDev bool) {
	t := Language(r, cat)
	page := NewPage(r, cat, t, "not_found", isDev)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_ = components.NotFoundPage(components.NotFoundData{Page: page}).Render(r.Context(), w)
}
