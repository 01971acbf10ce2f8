// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/text/language"

	"github.com/new-arrivals-chi/arrivals/internal/content"
	"github.com/new-arrivals-chi/arrivals/internal/directory"
	"github.com/new-arrivals-chi/arrivals/internal/filter"
	"github.com/new-arrivals-chi/arrivals/internal/testutil"
	"github.com/new-arrivals-chi/arrivals/internal/ui/notifier"
)

// TestResource is a helper to create directory entries with minimal
// boilerplate.
type TestResource struct {
	ID           string
	Name         string
	ZipCode      string
	City         string
	Neighborhood string
	Supplies     []string
	Hours        string
	Languages    []string
	Status       directory.Status
}

// TestFixture holds everything a feature handler needs.
type TestFixture struct {
	Source       *content.Source
	Store        *directory.SQLStore
	Profiles     []filter.Profile
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
}

// SetupTestFixture loads the embedded content and an in-memory directory
// holding resources.
func SetupTestFixture(t *testing.T, resources ...TestResource) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)

	src, err := content.NewSource(content.Embedded(), language.English, logger)
	require.NoError(t, err)

	return &TestFixture{
		Source:       src,
		Store:        SetupTestStore(t, resources...),
		Profiles:     filter.DefaultProfiles(),
		Notifier:     notifier.New(),
		SessionStore: NewTestSessionStore(),
	}
}

// SetupTestStore creates a migrated in-memory store with the provided
// resources.
func SetupTestStore(t *testing.T, resources ...TestResource) *directory.SQLStore {
	t.Helper()

	ctx := context.Background()
	store, err := directory.Open(ctx, directory.Config{Driver: "sqlite", DSN: ":memory:"}, testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	require.NoError(t, store.Migrate(ctx))

	for _, tr := range resources {
		require.NoError(t, store.Upsert(ctx, toResource(tr)))
	}
	return store
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// RequestWithTimeout wraps a request with a context timeout.
func RequestWithTimeout(t *testing.T, r *http.Request, timeout time.Duration) *http.Request {
	t.Helper()
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	t.Cleanup(cancel)
	return r.WithContext(ctx)
}

// WithCookies copies the cookies a previous response set onto r, the way a
// browser would.
func WithCookies(r *http.Request, prev *httptest.ResponseRecorder) *http.Request {
	for _, c := range prev.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

// SSEElements extracts the markup of every patch-elements event in an SSE
// response body.
func SSEElements(body string) string {
	var b strings.Builder
	for _, line := range strings.Split(body, "\n") {
		if rest, ok := strings.CutPrefix(line, "data: elements "); ok {
			b.WriteString(rest)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// TextsByClass parses markup and returns the text of every element with the
// given tag and class, in document order.
func TextsByClass(t *testing.T, markup, tag, class string) []string {
	t.Helper()

	doc, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)

	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag && hasClass(n, class) {
			out = append(out, strings.TrimSpace(textContent(n)))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

// ElementByID returns the element with id, or nil.
func ElementByID(t *testing.T, markup, id string) *html.Node {
	t.Helper()

	doc, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)

	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && Attr(n, "id") == id {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports whether n carries attribute key.
func HasAttr(n *html.Node, key string) bool {
	return slices.ContainsFunc(n.Attr, func(a html.Attribute) bool { return a.Key == key })
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(Attr(n, "class")), class)
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

// NewTestNotifier creates a notifier for testing.
func NewTestNotifier() *notifier.Notifier {
	return notifier.New()
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}

// toResource converts a TestResource to a directory.Resource.
func toResource(tr TestResource) *directory.Resource {
	status := tr.Status
	if status == "" {
		status = directory.StatusActive
	}
	city := tr.City
	if city == "" {
		city = "Chicago"
	}
	return &directory.Resource{
		ID:           tr.ID,
		Name:         tr.Name,
		ZipCode:      tr.ZipCode,
		City:         city,
		State:        "IL",
		Neighborhood: tr.Neighborhood,
		Supplies:     tr.Supplies,
		Hours:        tr.Hours,
		Languages:    tr.Languages,
		Status:       status,
	}
}
