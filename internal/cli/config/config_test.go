package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/new-arrivals-chi/arrivals/internal/filter"
)

// newFlags mirrors the persistent flags of the root command.
func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("port", DefaultPort, "")
	fs.Bool("watch", false, "")
	fs.Bool("dev", false, "")
	fs.String("session-secret", "", "")
	fs.String("content-dir", "", "")
	fs.String("db-driver", "", "")
	fs.String("db-dsn", "", "")
	fs.String("lang", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.Bool("no-color", false, "")
	fs.String("format", "table", "")
	return fs
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "arrivals.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// =============================================================================
// Load
// =============================================================================

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := NewLoader().Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultShutdownTimeout, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DefaultSessionSecret, cfg.Server.SessionSecret)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, filepath.Join(dir, DefaultDSN), cfg.Database.DSN)
	assert.Equal(t, "en", cfg.DefaultLanguage)
	assert.True(t, cfg.UsesEmbeddedContent())
	assert.False(t, cfg.Navigator.RestoreParentThemeOnBack)
	assert.True(t, cfg.Navigator.AppendLocaleParam)
	assert.Equal(t, "lang", cfg.Navigator.LocaleParam)
	assert.Equal(t, filter.DefaultProfiles(), cfg.Profiles())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, `
server:
  port: 9000
  shutdown_timeout: 2s
database:
  driver: postgres
  dsn: postgres://localhost/arrivals
content_dir: content
default_language: es
navigator:
  restore_parent_theme_on_back: true
tables:
  - name: food
    title: supplies_title
    mode: token
    delimiter: ";"
    columns:
      - { id: supplies, field: supplies, label: supplies }
      - { id: zip, field: zip_code, label: zip_code }
      - { id: hood, field: neighborhood, label: neighborhood }
      - { id: org, field: name, label: organization }
`)

	l := NewLoader()
	cfg, err := l.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "arrivals.yaml"), l.FileUsed())
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/arrivals", cfg.Database.DSN, "urls are not resolved as paths")
	assert.Equal(t, filepath.Join(dir, "content"), cfg.ContentDir)
	assert.Equal(t, "es", cfg.LanguageTag().String())
	assert.True(t, cfg.Navigator.RestoreParentThemeOnBack)
	assert.True(t, cfg.Navigator.AppendLocaleParam, "unset keys keep their default")

	profiles := cfg.Profiles()
	require.Len(t, profiles, 1)
	assert.Equal(t, "food", profiles[0].Name)
	assert.Equal(t, filter.MatchToken, profiles[0].Mode)
	assert.Equal(t, ";", profiles[0].Delimiter)
	assert.Equal(t, "zip_code", profiles[0].Columns[1].Field)
}

func TestLoad_FoundUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "server:\n  port: 9100\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	t.Chdir(nested)

	cfg, err := NewLoader().Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, root, cfg.ProjectRoot)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, "server:\n  port: 9000\ndefault_language: es\ncontent_dir: from-file\n")

	t.Setenv("ARRIVALS_SERVER__PORT", "9001")
	t.Setenv("ARRIVALS_DEFAULT_LANGUAGE", "de")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--port", "9002", "--content-dir", "from-flag", "--format", "json"}))

	cfg, err := NewLoader().Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, 9002, cfg.Server.Port, "flag beats env and file")
	assert.Equal(t, "de", cfg.DefaultLanguage, "env beats file")
	assert.Equal(t, filepath.Join(dir, "from-flag"), cfg.ContentDir)
}

func TestLoad_UnchangedFlagsDoNotOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, "server:\n  port: 9000\n")

	flags := newFlags()
	require.NoError(t, flags.Parse(nil))

	cfg, err := NewLoader().Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoad_ExplicitFile(t *testing.T) {
	cfgDir := t.TempDir()
	path := writeConfig(t, cfgDir, "content_dir: content\n")
	t.Chdir(t.TempDir())

	cfg, err := NewLoader().Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, cfgDir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(cfgDir, "content"), cfg.ContentDir)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		errSubstr string
		invalid   bool
	}{
		{name: "malformed yaml", body: "server: [", errSubstr: "error reading config file"},
		{name: "bad duration", body: "server:\n  shutdown_timeout: soon\n", errSubstr: "unable to decode config"},
		{name: "bad match mode", body: "tables:\n  - name: x\n    mode: fuzzy\n", errSubstr: "unknown match mode"},
		{name: "port out of range", body: "server:\n  port: 70000\n", errSubstr: "server.port", invalid: true},
		{name: "unknown driver", body: "database:\n  driver: mysql\n", errSubstr: "database.driver", invalid: true},
		{name: "bad language", body: "default_language: \"!!\"\n", errSubstr: "default_language", invalid: true},
		{name: "incomplete table", body: "tables:\n  - name: x\n", errSubstr: "needs id and field", invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			writeConfig(t, dir, tt.body)

			_, err := NewLoader().Load("", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

// =============================================================================
// Helpers
// =============================================================================

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.port", envKey("ARRIVALS_SERVER__PORT"))
	assert.Equal(t, "content_dir", envKey("ARRIVALS_CONTENT_DIR"))
	assert.Equal(t, "navigator.restore_parent_theme_on_back", envKey("ARRIVALS_NAVIGATOR__RESTORE_PARENT_THEME_ON_BACK"))
}

func TestIsFileDSN(t *testing.T) {
	tests := []struct {
		dsn  string
		want bool
	}{
		{"directory.db", true},
		{"/var/lib/arrivals.db", true},
		{":memory:", false},
		{"file:test.db?cache=shared", false},
		{"postgres://localhost/arrivals", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isFileDSN(tt.dsn), tt.dsn)
	}
}

func TestValidateContentDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	assert.NoError(t, (&Config{}).ValidateContentDir())
	assert.NoError(t, (&Config{ContentDir: dir}).ValidateContentDir())
	assert.Error(t, (&Config{ContentDir: filepath.Join(dir, "missing")}).ValidateContentDir())
	assert.Error(t, (&Config{ContentDir: file}).ValidateContentDir())
}
