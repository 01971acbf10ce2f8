package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/new-arrivals-chi/arrivals/internal/cli/config"
	"github.com/new-arrivals-chi/arrivals/internal/ui"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the resource portal",
		Long: `Start the web portal: the legal help navigator, the resource tables and
the calendar API.

Content (decision tree, string tables, calendars) is built in unless
--content-dir points at a directory with the same layout. With --watch, edits
under that directory are reloaded and pushed to open pages.`,
		Example: `  # Serve the built-in content on the default port
  arrivals serve

  # Serve editable content and reload it on change
  arrivals serve --content-dir ./content --watch

  # Development mode with live browser reload
  arrivals serve --dev --port 3000`,
		RunE: runServe,
	}

	cmd.Flags().Int("port", config.DefaultPort, "Port to serve on")
	cmd.Flags().Bool("watch", false, "Reload content when files under --content-dir change")
	cmd.Flags().Bool("dev", false, "Enable development reload endpoints")
	cmd.Flags().String("session-secret", "", "Key for signing session cookies")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	src, err := cmdCtx.LoadSource()
	if err != nil {
		return err
	}

	store, err := cmdCtx.OpenStore(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if cfg.Server.SessionSecret == config.DefaultSessionSecret && !cfg.Server.Dev {
		r.Warning("using the built-in session secret; set server.session_secret or ARRIVALS_SERVER__SESSION_SECRET")
	}

	server := ui.NewServer(ui.Config{
		Source:          src,
		Store:           store,
		Profiles:        cfg.Profiles(),
		NavOptions:      cfg.Navigator,
		Port:            cfg.Server.Port,
		Watch:           cfg.Server.Watch,
		ContentDir:      cfg.ContentDir,
		SessionSecret:   cfg.Server.SessionSecret,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Dev:             cfg.Server.Dev,
		Logger:          cmdCtx.Logger,
	})

	r.Printf("Serving on http://localhost:%d\n", cfg.Server.Port)
	r.Muted("Press Ctrl+C to stop")

	if err := server.Serve(cmd.Context()); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
