package content

import (
	"io/fs"
	"log/slog"
	"sync"

	"golang.org/x/text/language"
)

// Source serves the current bundle and swaps it on reload.
type Source struct {
	fsys   fs.FS
	def    language.Tag
	logger *slog.Logger

	mu     sync.RWMutex
	bundle *Bundle
}

// NewSource loads the first bundle from fsys.
func NewSource(fsys fs.FS, def language.Tag, logger *slog.Logger) (*Source, error) {
	b, err := Load(fsys, def)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Source{fsys: fsys, def: def, logger: logger, bundle: b}, nil
}

// Bundle returns the current snapshot.
func (s *Source) Bundle() *Bundle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bundle
}

// Reload re-reads the content. On error the previous bundle stays in place.
func (s *Source) Reload() error {
	b, err := Load(s.fsys, s.def)
	if err != nil {
		s.logger.Error("content reload failed, keeping previous content", "error", err)
		return err
	}

	s.mu.Lock()
	s.bundle = b
	s.mu.Unlock()

	s.logger.Info("content reloaded",
		"languages", len(b.Catalog.Tags()),
		"calendars", len(b.Calendars),
		"topics", len(b.Tree.Leaves()),
	)
	return nil
}
