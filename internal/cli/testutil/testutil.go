// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/new-arrivals-chi/arrivals/internal/cli/config"
	"github.com/new-arrivals-chi/arrivals/internal/cli/output"
)

// SeedFileName is the seed file written by SetupTestProject.
const SeedFileName = "resources.yaml"

const projectConfig = `server:
  port: 9090
database:
  driver: sqlite
  dsn: .arrivals/test.db
default_language: en
`

const seedResources = `resources:
  - id: a
    name: Alivio Medical Center
    street_address: 2355 S Western Ave
    zip_code: "60608"
    city: Chicago
    state: IL
    neighborhood: Pilsen
    supplies: [Medicine]
  - id: b
    name: Pilsen Food Pantry
    zip_code: "60608"
    city: Chicago
    state: IL
    neighborhood: Pilsen
    supplies: [Food, Clothing]
  - id: c
    name: Uptown Closet
    zip_code: "60640"
    city: Chicago
    state: IL
    neighborhood: Uptown
    supplies: [Clothing, Hygiene products]
  - id: d
    name: Hidden Org
    zip_code: "60608"
    city: Chicago
    state: IL
    neighborhood: Pilsen
    supplies: [Food]
    status: HIDDEN
`

// SetupTestProject creates a temporary project with an arrivals.yaml that
// keeps its database under the project, plus a seed file of four resources
// (a, b, c active and d hidden).
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "arrivals.yaml"), []byte(projectConfig), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, SeedFileName), []byte(seedResources), 0o600))
	return tmpDir
}

// LoadProjectConfig loads the config of a project created by
// SetupTestProject.
func LoadProjectConfig(t *testing.T, dir string) *config.Config {
	t.Helper()

	cfg, err := config.NewLoader().Load(filepath.Join(dir, "arrivals.yaml"), nil)
	require.NoError(t, err)
	cfg.NoColor = true
	return cfg
}

// ExecuteCommand runs cmd with args and cfg in its context and returns what
// it wrote to stdout and stderr.
func ExecuteCommand(t *testing.T, cmd *cobra.Command, cfg *config.Config, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)

	ctx := context.Background()
	if cfg != nil {
		ctx = config.WithConfig(ctx, cfg)
	}
	err = cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a colourless renderer writing to buffers.
func NewTestRenderer(mode output.Mode) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRenderer(out, errOut, mode, true),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
