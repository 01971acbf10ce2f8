package commands

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/new-arrivals-chi/arrivals/internal/cli/config"
	"github.com/new-arrivals-chi/arrivals/internal/cli/output"
	"github.com/new-arrivals-chi/arrivals/internal/content"
	"github.com/new-arrivals-chi/arrivals/internal/directory"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config, logger and renderer of cmd. A
// --format flag on cmd selects the output mode.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig(cmd.Context())

	mode := output.ModeTable
	if f := cmd.Flags().Lookup("format"); f != nil {
		m, err := output.ParseMode(f.Value.String())
		if err != nil {
			return nil, err
		}
		mode = m
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode, cfg.NoColor),
	}, nil
}

// OpenStore opens and migrates the configured directory database.
// The caller must Close it.
func (c *CommandContext) OpenStore(ctx context.Context) (*directory.SQLStore, error) {
	dbCfg := c.Cfg.Database
	if dialect, _ := directory.ParseDialect(dbCfg.Driver); dialect == directory.DialectSQLite {
		if dir := filepath.Dir(dbCfg.DSN); dbCfg.DSN != "" && !strings.HasPrefix(dbCfg.DSN, ":memory:") && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	store, err := directory.Open(ctx, dbCfg, c.Logger)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// ContentFS returns the content directory, or the built-in content when none
// is configured.
func (c *CommandContext) ContentFS() (fs.FS, error) {
	if err := c.Cfg.ValidateContentDir(); err != nil {
		return nil, err
	}
	if c.Cfg.UsesEmbeddedContent() {
		return content.Embedded(), nil
	}
	return os.DirFS(c.Cfg.ContentDir), nil
}

// LoadSource loads the content bundle.
func (c *CommandContext) LoadSource() (*content.Source, error) {
	fsys, err := c.ContentFS()
	if err != nil {
		return nil, err
	}
	src, err := content.NewSource(fsys, c.Cfg.LanguageTag(), c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load content: %w", err)
	}
	return src, nil
}

// getConfig returns the config loaded by the root command, or the defaults
// when a command runs standalone.
func getConfig(ctx context.Context) *config.Config {
	if ctx != nil {
		if cfg := config.FromContext(ctx); cfg != nil {
			return cfg
		}
	}
	cfg, err := config.NewLoader().Load("", nil)
	if err != nil {
		return &config.Config{
			Server:          config.ServerConfig{Port: config.DefaultPort, SessionSecret: config.DefaultSessionSecret},
			Database:        directory.Config{Driver: config.DefaultDriver, DSN: ":memory:"},
			DefaultLanguage: config.DefaultLanguage,
		}
	}
	return cfg
}
