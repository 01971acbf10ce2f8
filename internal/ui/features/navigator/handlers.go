package navigator

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/new-arrivals-chi/arrivals/internal/content"
	"github.com/new-arrivals-chi/arrivals/internal/legal"
	"github.com/new-arrivals-chi/arrivals/internal/locale"
	"github.com/new-arrivals-chi/arrivals/internal/ui/features/common"
	"github.com/new-arrivals-chi/arrivals/internal/ui/features/common/components"
	"github.com/new-arrivals-chi/arrivals/internal/ui/notifier"
)

// Handlers provides HTTP handlers for the navigator feature.
type Handlers struct {
	source       *content.Source
	opts         legal.Options
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	isDev        bool
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(src *content.Source, opts legal.Options, sessionStore sessions.Store, notify *notifier.Notifier, isDev bool, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		source:       src,
		opts:         opts,
		sessionStore: sessionStore,
		notifier:     notify,
		isDev:        isDev,
		logger:       logger,
	}
}

// navigator builds a navigator over the current content. The tree can be
// swapped by a reload between requests, so it is never cached.
func (h *Handlers) navigator() (*legal.Navigator, *content.Bundle) {
	b := h.source.Bundle()
	return legal.NewNavigator(b.Tree, h.opts), b
}

// LegalPage renders the navigator page. Opening the page always starts at
// the root.
func (h *Handlers) LegalPage(w http.ResponseWriter, r *http.Request) {
	nav, b := h.navigator()
	t := common.Language(r, b.Catalog)

	sess, _ := h.sessionStore.Get(r, SessionName)
	state := nav.Start(locale.Code(t))
	if err := h.saveState(w, r, sess, state); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	level, err := nav.Render(state, t)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	page := common.NewPage(r, b.Catalog, t, "legal", h.isDev)
	if err := components.LegalPage(components.LegalData{
		Page: page,
		Nav:  components.NavigatorData{Level: level},
	}).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Select activates an option of the current level. Branches re-render the
// navigator; leaves redirect the browser and render nothing.
func (h *Handlers) Select(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	nav, b := h.navigator()
	sess, state := h.loadState(r, nav, locale.Code(common.Language(r, b.Catalog)))

	out, err := nav.Activate(&state, name)
	if errors.Is(err, legal.ErrUnknownOption) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if out.Kind == legal.OutcomeNavigate {
		h.logger.Debug("leaf selected", "option", name, "url", out.URL)
		sse := datastar.NewSSE(w, r)
		if err := sse.Redirect(out.URL); err != nil {
			_ = sse.ConsoleError(err)
		}
		return
	}

	h.commit(w, r, nav, b, sess, state)
}

// Back pops one level. At the root it re-renders unchanged.
func (h *Handlers) Back(w http.ResponseWriter, r *http.Request) {
	nav, b := h.navigator()
	sess, state := h.loadState(r, nav, locale.Code(common.Language(r, b.Catalog)))

	nav.Back(&state)
	h.commit(w, r, nav, b, sess, state)
}

// Toggle opens or closes the description of an option.
func (h *Handlers) Toggle(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	nav, b := h.navigator()
	sess, state := h.loadState(r, nav, locale.Code(common.Language(r, b.Catalog)))

	if _, err := nav.Toggle(&state, name); err != nil {
		if errors.Is(err, legal.ErrUnknownOption) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.commit(w, r, nav, b, sess, state)
}

// Refresh re-renders the visitor's current level, used after a content
// reload.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	nav, b := h.navigator()
	sess, state := h.loadState(r, nav, locale.Code(common.Language(r, b.Catalog)))
	h.commit(w, r, nav, b, sess, state)
}

// commit saves state and patches the navigator fragment.
func (h *Handlers) commit(w http.ResponseWriter, r *http.Request, nav *legal.Navigator, b *content.Bundle, sess *sessions.Session, state legal.State) {
	if err := h.saveState(w, r, sess, state); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	level, err := nav.Render(state, b.Catalog.Resolve(state.Lang))
	if err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElementTempl(components.Navigator(components.NavigatorData{Level: level})); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// LegalUpdates is the long-lived SSE endpoint of the navigator page. After a
// content reload it asks the browser to refresh its level; the request that
// opened this stream carries a session cookie that may be out of date.
func (h *Handlers) LegalUpdates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case generation := <-updates:
			if err := sse.PatchElementTempl(components.LegalRefresh(generation),
				datastar.WithSelectorID("legal-refresh"),
				datastar.WithModeInner(),
			); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// TopicPage renders the page a leaf links to. The heading is the label of the
// leaf pointing at the page and the body is the "<topic>_body" string.
func (h *Handlers) TopicPage(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")
	b := h.source.Bundle()
	t := common.Language(r, b.Catalog)

	labelKey := ""
	for _, leaf := range b.Tree.Leaves() {
		if strings.SplitN(leaf.Link, "?", 2)[0] == "/legal/"+topic {
			labelKey = leaf.LabelKey
			break
		}
	}
	body, hasBody := t.Lookup(topic + "_body")
	if labelKey == "" && !hasBody {
		common.NotFound(w, r, b.Catalog, h.isDev)
		return
	}
	if labelKey == "" {
		labelKey = topic
	}

	var paragraphs []string
	for _, p := range strings.Split(body, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	page := common.NewPage(r, b.Catalog, t, labelKey, h.isDev)
	if err := components.TopicPage(components.TopicData{
		Page:       page,
		Heading:    page.Title,
		Paragraphs: paragraphs,
		BackLabel:  t.Text("back", "Back"),
	}).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
