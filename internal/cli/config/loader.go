package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/new-arrivals-chi/arrivals/internal/legal"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store the loaded config in context.
type configKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// flagKeys maps command-line flags onto configuration keys. Flags missing
// here are not configuration.
var flagKeys = map[string]string{
	"port":           "server.port",
	"watch":          "server.watch",
	"dev":            "server.dev",
	"session-secret": "server.session_secret",
	"content-dir":    "content_dir",
	"db-driver":      "database.driver",
	"db-dsn":         "database.dsn",
	"lang":           "default_language",
	"verbose":        "verbose",
	"no-color":       "no_color",
}

// Loader layers configuration sources into a Config.
type Loader struct {
	k        *koanf.Koanf
	fileUsed string
}

// NewLoader creates a loader with an empty koanf instance.
func NewLoader() *Loader {
	return &Loader{k: koanf.New(".")}
}

// FileUsed returns the config file read by the last Load, if any.
func (l *Loader) FileUsed() string {
	return l.fileUsed
}

// defaults returns the built-in configuration as a flat map.
func defaults() map[string]any {
	nav := legal.DefaultOptions()
	return map[string]any{
		"server.port":                            DefaultPort,
		"server.session_secret":                  DefaultSessionSecret,
		"server.shutdown_timeout":                DefaultShutdownTimeout.String(),
		"server.watch":                           false,
		"server.dev":                             false,
		"database.driver":                        DefaultDriver,
		"database.dsn":                           DefaultDSN,
		"content_dir":                            "",
		"default_language":                       DefaultLanguage,
		"navigator.restore_parent_theme_on_back": nav.RestoreParentThemeOnBack,
		"navigator.append_locale_param":          nav.AppendLocaleParam,
		"navigator.locale_param":                 nav.LocaleParam,
		"verbose":                                false,
		"no_color":                               false,
	}
}

// Load reads configuration from cfgFile (or the first arrivals.yaml found
// from the working directory upward), the environment and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func (l *Loader) Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	l.k = koanf.New(".")
	l.fileUsed = ""

	// 1. Load defaults
	if err := l.k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	projectRoot := cwd
	if cfgFile == "" {
		if root := findProjectRootUpward(cwd); root != "" {
			projectRoot = root
			cfgFile = configIn(root)
		}
	} else if abs, err := filepath.Abs(cfgFile); err == nil {
		projectRoot = filepath.Dir(abs)
	}
	if cfgFile != "" {
		if err := l.k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		l.fileUsed = cfgFile
	}

	// 3. Load environment variables (ARRIVALS_ prefix)
	// Transform: ARRIVALS_SERVER__PORT -> server.port
	if err := l.k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - only flags that were explicitly set)
	var flagContentDir, flagDSN string
	if flags != nil {
		if err := l.k.Load(posflag.ProviderWithFlag(flags, ".", l.k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
		// Paths given on the command line are relative to the working
		// directory, not the project root.
		if f := flags.Lookup("content-dir"); f != nil && f.Changed && f.Value.String() != "" {
			flagContentDir, _ = filepath.Abs(f.Value.String())
		}
		if f := flags.Lookup("db-dsn"); f != nil && f.Changed && isFileDSN(f.Value.String()) {
			flagDSN, _ = filepath.Abs(f.Value.String())
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := l.k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Resolve relative paths against the project root
	cfg.ProjectRoot = projectRoot
	if flagContentDir != "" {
		cfg.ContentDir = flagContentDir
	} else {
		cfg.ContentDir = resolvePathRelativeTo(cfg.ContentDir, projectRoot)
	}
	if flagDSN != "" {
		cfg.Database.DSN = flagDSN
	} else if strings.EqualFold(cfg.Database.Driver, DefaultDriver) && isFileDSN(cfg.Database.DSN) {
		cfg.Database.DSN = resolvePathRelativeTo(cfg.Database.DSN, projectRoot)
	}
	cfg.Database.DSN = os.ExpandEnv(cfg.Database.DSN)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns ARRIVALS_SERVER__PORT into server.port and
// ARRIVALS_CONTENT_DIR into content_dir.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// isFileDSN reports whether dsn names a sqlite file rather than memory or a
// connection URL.
func isFileDSN(dsn string) bool {
	return dsn != "" && !strings.HasPrefix(dsn, ":memory:") && !strings.Contains(dsn, "://") &&
		!strings.HasPrefix(dsn, "file:")
}

// configIn returns the config file in dir, or "".
func configIn(dir string) string {
	for _, name := range ConfigFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findProjectRootUpward searches upward from startDir for an arrivals config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for range maxUpwardSearchLevels {
		if configIn(dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() any {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// WithConfig returns a copy of ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the config stored by WithConfig, or nil.
func FromContext(ctx context.Context) *Config {
	cfg, _ := ctx.Value(configKey{}).(*Config)
	return cfg
}
