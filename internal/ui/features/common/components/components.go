// Package components renders the portal's pages and the fragments patched in
// over SSE. Markup lives in html/template files; every exported constructor
// returns a templ.Component so handlers can render a full page with Render or
// push a fragment with sse.PatchElementTempl.
package components

import (
	"embed"
	"html/template"
	"strconv"

	"github.com/a-h/templ"

	"github.com/new-arrivals-chi/arrivals/internal/directory"
	"github.com/new-arrivals-chi/arrivals/internal/legal"
	"github.com/new-arrivals-chi/arrivals/internal/ui/resources"
)

// DatastarURL is the client bundle every page loads.
const DatastarURL = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(
	template.New("components").
		Funcs(template.FuncMap{"static": resources.StaticPath}).
		ParseFS(templateFS, "templates/*.html"),
)

func render(name string, data any) templ.Component {
	return templ.FromGoHTML(templates.Lookup(name), data)
}

// Page is the chrome shared by all pages.
type Page struct {
	Title        string
	SiteTitle    string
	LegalLabel   string
	Lang         string
	Dir          string
	Path         string
	AltLang      string
	AltLangLabel string
	IsDev        bool
	DatastarURL  string
}

// TableLink is one resource table on the home page.
type TableLink struct {
	Name  string
	Title string
}

// HomeData feeds HomePage.
type HomeData struct {
	Page   Page
	Intro  string
	Tables []TableLink
}

// HomePage renders the landing page.
func HomePage(d HomeData) templ.Component {
	return render("home_page", d)
}

// HomeLinks renders the link list patched after a content reload.
func HomeLinks(d HomeData) templ.Component {
	return render("home_links", d)
}

// NotFoundData feeds NotFoundPage.
type NotFoundData struct {
	Page Page
}

// NotFoundPage renders a 404 body.
func NotFoundPage(d NotFoundData) templ.Component {
	return render("not_found_page", d)
}

// NavigatorData is one rendered navigator level.
type NavigatorData struct {
	Level legal.Level
}

// LegalData feeds LegalPage.
type LegalData struct {
	Page Page
	Nav  NavigatorData
}

// LegalPage renders the navigator page at the root level.
func LegalPage(d LegalData) templ.Component {
	return render("legal_page", d)
}

// Navigator renders the #legal-navigator fragment.
func Navigator(d NavigatorData) templ.Component {
	return render("navigator", d)
}

// LegalRefresh renders an element that makes the browser re-fetch its own
// navigator level. The content generation makes each patch distinct.
func LegalRefresh(generation uint64) templ.Component {
	return render("legal_refresh", strconv.FormatUint(generation, 10))
}

// TopicData feeds TopicPage.
type TopicData struct {
	Page       Page
	Heading    string
	Paragraphs []string
	BackLabel  string
}

// TopicPage renders a legal topic reached from a leaf.
func TopicPage(d TopicData) templ.Component {
	return render("topic_page", d)
}

// ColumnView is one filter dropdown.
type ColumnView struct {
	ID       string
	Label    string
	Options  []string
	Selected string
}

// RowView is one table row with its filter verdict.
type RowView struct {
	ID      string
	Name    string
	Cells   []string
	Visible bool
}

// ResourcesData feeds ResourcesPage and ResourceTable.
type ResourcesData struct {
	Page         Page
	Table        string
	Heading      string
	NameLabel    string
	AllLabel     string
	NoResults    string
	Signals      string
	Columns      []ColumnView
	Rows         []RowView
	VisibleCount int
}

// ResourcesPage renders a filterable resource table.
func ResourcesPage(d ResourcesData) templ.Component {
	return render("resources_page", d)
}

// ResourceTable renders the #resource-rows fragment.
func ResourceTable(d ResourcesData) templ.Component {
	return render("resource_table", d)
}

// InfoField is one labelled attribute on the detail page.
type InfoField struct {
	Label string
	Value string
}

// InfoData feeds InfoPage.
type InfoData struct {
	Page     Page
	Resource *directory.Resource
	Fields   []InfoField
}

// InfoPage renders the public detail page of a resource.
func InfoPage(d InfoData) templ.Component {
	return render("info_page", d)
}
