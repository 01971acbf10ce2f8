package config

import (
	"fmt"
	"os"

	"golang.org/x/text/language"

	"github.com/new-arrivals-chi/arrivals/internal/directory"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port must be 1..65535, got %d", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.SessionSecret == "" {
		return fmt.Errorf("%w: server.session_secret is required", ErrInvalidConfig)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: server.shutdown_timeout must not be negative", ErrInvalidConfig)
	}
	if _, err := directory.ParseDialect(c.Database.Driver); err != nil {
		return fmt.Errorf("%w: database.driver: %v", ErrInvalidConfig, err)
	}
	if _, err := language.Parse(c.DefaultLanguage); err != nil {
		return fmt.Errorf("%w: default_language %q: %v", ErrInvalidConfig, c.DefaultLanguage, err)
	}
	if c.Navigator.AppendLocaleParam && c.Navigator.LocaleParam == "" {
		return fmt.Errorf("%w: navigator.locale_param is required when append_locale_param is set", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.Tables))
	for _, p := range c.Tables {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate table %q", ErrInvalidConfig, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// ValidateContentDir checks that the configured content directory exists.
func (c *Config) ValidateContentDir() error {
	if c.UsesEmbeddedContent() {
		return nil
	}
	info, err := os.Stat(c.ContentDir)
	if err != nil {
		return fmt.Errorf("content directory %s: %w\nHint: omit content_dir to use the built-in content", c.ContentDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("content directory %s is not a directory", c.ContentDir)
	}
	return nil
}

// LanguageTag returns the parsed default language.
func (c *Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.DefaultLanguage)
	if err != nil {
		return language.English
	}
	return tag
}
