package ui

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/new-arrivals-chi/arrivals/internal/legal"
	"github.com/new-arrivals-chi/arrivals/internal/testutil"
	"github.com/new-arrivals-chi/arrivals/internal/ui/features"
)

func setupTestServer(t *testing.T, dev bool) (*httptest.Server, *http.Client) {
	t.Helper()

	fixture := features.SetupTestFixture(t, features.TestResource{
		ID: "a", Name: "Alivio Medical Center", ZipCode: "60608", Neighborhood: "Pilsen",
	})
	s := NewServer(Config{
		Source:        fixture.Source,
		Store:         fixture.Store,
		NavOptions:    legal.DefaultOptions(),
		SessionSecret: "test-secret-key-32-bytes-long!!",
		Dev:           dev,
		Logger:        testutil.NewTestLogger(t),
	})
	handler, err := s.Handler()
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return srv, &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func fetch(t *testing.T, c *http.Client, method, url string) (int, http.Header, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header, string(body)
}

func TestServer_Routes(t *testing.T) {
	srv, client := setupTestServer(t, false)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"home", http.MethodGet, "/", http.StatusOK, "New Arrivals Chicago"},
		{"legal", http.MethodGet, "/legal?lang=es", http.StatusOK, `id="legal-navigator"`},
		{"topic", http.MethodGet, "/legal/lawyers", http.StatusOK, "<h1>"},
		{"table", http.MethodGet, "/resources/health", http.StatusOK, "Alivio Medical Center"},
		{"info", http.MethodGet, "/info/a", http.StatusOK, "Alivio Medical Center"},
		{"calendars", http.MethodGet, "/api/calendars", http.StatusOK, `"en-US"`},
		{"stylesheet", http.MethodGet, "/static/css/app.css", http.StatusOK, ".option-button"},
		{"unknown path", http.MethodGet, "/nope", http.StatusNotFound, "Page not found"},
		{"reload only in dev", http.MethodGet, "/hotreload", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _, body := fetch(t, client, tt.method, srv.URL+tt.path)
			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, body, tt.wantBody)
		})
	}
}

func TestServer_NavigationUsesSessionCookie(t *testing.T) {
	srv, client := setupTestServer(t, false)

	status, _, _ := fetch(t, client, http.MethodGet, srv.URL+"/legal")
	require.Equal(t, http.StatusOK, status)

	status, header, body := fetch(t, client, http.MethodPost, srv.URL+"/legal/nav/select/work_auth")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.HasPrefix(header.Get("Content-Type"), "text/event-stream"))
	assert.Contains(t, body, "button-blue")
	assert.Contains(t, body, "/legal/nav/select/tps")

	// The cookie now points below the root; back returns to it.
	_, _, body = fetch(t, client, http.MethodPost, srv.URL+"/legal/nav/back")
	assert.Contains(t, body, "/legal/nav/select/work_auth")
}

func TestServer_DevReload(t *testing.T) {
	srv, client := setupTestServer(t, true)

	status, _, body := fetch(t, client, http.MethodGet, srv.URL+"/hotreload")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body)

	_, _, page := fetch(t, client, http.MethodGet, srv.URL+"/")
	assert.Contains(t, page, "dev-reload")
}

func TestNewServer_Defaults(t *testing.T) {
	s := NewServer(Config{SessionSecret: "x"})
	assert.False(t, s.IsDev())
	assert.Equal(t, DefaultShutdownTimeout, s.shutdownTimeout)
	assert.NotEmpty(t, s.profiles)
	assert.NotNil(t, s.Notifier())
}
