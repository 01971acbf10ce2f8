package navigator

import (
	"errors"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/new-arrivals-chi/arrivals/internal/legal"
)

const (
	// SessionName is the cookie holding the visitor's navigation state.
	SessionName = "arrivals"
	stateKey    = "legal_state"
)

// loadState returns the visitor's session and navigation state. A missing,
// unreadable or stale state starts over at the root.
func (h *Handlers) loadState(r *http.Request, nav *legal.Navigator, lang string) (*sessions.Session, legal.State) {
	sess, err := h.sessionStore.Get(r, SessionName)
	if err != nil {
		h.logger.Debug("discarding unreadable session", "error", err)
	}

	raw, _ := sess.Values[stateKey].(string)
	if raw == "" {
		return sess, nav.Start(lang)
	}
	state, err := legal.DecodeState(raw)
	if err != nil {
		h.logger.Debug("resetting navigation state", "error", err)
		return sess, nav.Start(lang)
	}
	if _, err := nav.Tree().Walk(state.Path); errors.Is(err, legal.ErrStaleState) {
		h.logger.Info("navigation state no longer matches the tree, resetting", "path", state.Path)
		return sess, nav.Start(state.Lang)
	}
	return sess, state
}

// saveState stores state in the session. It must run before any SSE output
// because it writes a Set-Cookie header.
func (h *Handlers) saveState(w http.ResponseWriter, r *http.Request, sess *sessions.Session, state legal.State) error {
	raw, err := state.Encode()
	if err != nil {
		return err
	}
	sess.Values[stateKey] = raw
	return sess.Save(r, w)
}
