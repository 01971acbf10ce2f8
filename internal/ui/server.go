// Package ui provides the web portal: landing page, legal navigator,
// resource tables and the calendar API.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/new-arrivals-chi/arrivals/internal/content"
	"github.com/new-arrivals-chi/arrivals/internal/directory"
	"github.com/new-arrivals-chi/arrivals/internal/filter"
	"github.com/new-arrivals-chi/arrivals/internal/legal"
	"github.com/new-arrivals-chi/arrivals/internal/ui/notifier"
	"github.com/new-arrivals-chi/arrivals/internal/ui/router"
)

// DefaultShutdownTimeout bounds graceful shutdown when Config leaves it zero.
const DefaultShutdownTimeout = 5 * time.Second

// Server is the portal's HTTP server.
type Server struct {
	source          *content.Source
	store           directory.Store
	profiles        []filter.Profile
	navOptions      legal.Options
	sessionStore    *sessions.CookieStore
	port            int
	watch           bool
	contentDir      string
	shutdownTimeout time.Duration
	dev             bool
	logger          *slog.Logger
	notifier        *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	Source          *content.Source
	Store           directory.Store
	Profiles        []filter.Profile
	NavOptions      legal.Options
	Port            int
	Watch           bool
	ContentDir      string
	SessionSecret   string
	ShutdownTimeout time.Duration
	Dev             bool
	Logger          *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400) // navigation state is short-lived
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	profiles := cfg.Profiles
	if len(profiles) == 0 {
		profiles = filter.DefaultProfiles()
	}

	return &Server{
		source:          cfg.Source,
		store:           cfg.Store,
		profiles:        profiles,
		navOptions:      cfg.NavOptions,
		sessionStore:    sessionStore,
		port:            cfg.Port,
		watch:           cfg.Watch,
		contentDir:      cfg.ContentDir,
		shutdownTimeout: timeout,
		dev:             cfg.Dev,
		logger:          logger,
		notifier:        notifier.New(),
	}
}

// Handler builds the routed handler with middleware.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, router.Deps{
		Source:       s.source,
		Store:        s.store,
		Profiles:     s.profiles,
		NavOptions:   s.navOptions,
		SessionStore: s.sessionStore,
		Notifier:     s.notifier,
		IsDev:        s.IsDev(),
		Logger:       s.logger,
	}); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		if s.contentDir == "" {
			s.logger.Warn("watch requested but content is embedded; not watching")
		} else {
			eg.Go(func() error {
				return s.source.Watch(egctx, s.contentDir, s.notifyClients)
			})
		}
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// IsDev reports whether the dev reload endpoints are mounted.
func (s *Server) IsDev() bool {
	return s.dev
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// notifyClients tells every open page that the content was reloaded.
func (s *Server) notifyClients() {
	gen := s.notifier.Broadcast()
	s.logger.Debug("content reloaded", "generation", gen, "listeners", s.notifier.Listeners())
}
