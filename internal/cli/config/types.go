// Package config loads the arrivals CLI configuration.
//
// Values are layered, lowest to highest: built-in defaults, arrivals.yaml,
// ARRIVALS_ environment variables, then command-line flags that were set
// explicitly.
package config

import (
	"time"

	"github.com/new-arrivals-chi/arrivals/internal/directory"
	"github.com/new-arrivals-chi/arrivals/internal/filter"
	"github.com/new-arrivals-chi/arrivals/internal/legal"
)

// ServerConfig holds configuration for the web portal.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	SessionSecret   string        `koanf:"session_secret"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Watch           bool          `koanf:"watch"`
	Dev             bool          `koanf:"dev"`
}

// Config holds all CLI configuration options.
type Config struct {
	Server          ServerConfig     `koanf:"server"`
	Database        directory.Config `koanf:"database"`
	ContentDir      string           `koanf:"content_dir"`
	DefaultLanguage string           `koanf:"default_language"`
	Navigator       legal.Options    `koanf:"navigator"`
	Tables          []filter.Profile `koanf:"tables"`
	Verbose         bool             `koanf:"verbose"`
	NoColor         bool             `koanf:"no_color"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultPort            = 8080
	DefaultSessionSecret   = "arrivals-dev-session-secret-0000"
	DefaultShutdownTimeout = 5 * time.Second
	DefaultDriver          = "sqlite"
	DefaultDSN             = ".arrivals/directory.db"
	DefaultLanguage        = "en"
	EnvPrefix              = "ARRIVALS_"
)

// ConfigFileNames are searched, in order, in the project root.
var ConfigFileNames = []string{"arrivals.yaml", "arrivals.yml"}

// Profiles returns the configured table profiles, or the built-in ones when
// none are configured.
func (c *Config) Profiles() []filter.Profile {
	if len(c.Tables) == 0 {
		return filter.DefaultProfiles()
	}
	return c.Tables
}

// UsesEmbeddedContent reports whether content is served from the binary.
func (c *Config) UsesEmbeddedContent() bool {
	return c.ContentDir == ""
}
