// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dataexplorer/internal/cli/config"
	"github.com/leapstack-labs/dataexplorer/internal/cli/output"
	shared "github.com/leapstack-labs/dataexplorer/internal/testutil"
)

// SetupTestProject creates a temporary project holding the sample dataset at
// the default local path, changes into it and clears DATAEXPLORER_ settings.
// The loaded configuration is reset when the test ends.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, filepath.Dir(filepath.FromSlash(config.DefaultLocalPath)))
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	src := shared.CopySample(t, dataDir)
	require.Equal(t, filepath.Join(tmpDir, filepath.FromSlash(config.DefaultLocalPath)), src)

	t.Chdir(tmpDir)
	for _, name := range []string{
		config.EnvDataURL, config.EnvLegacyDataURL,
		"DATAEXPLORER_LOCAL_PATH", "DATAEXPLORER_OUTPUT", "DATAEXPLORER_LOG_LEVEL",
	} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	return tmpDir
}

// LoadTestConfig writes body as dataexplorer.yaml into the current directory
// and loads it as the CLI would.
func LoadTestConfig(t *testing.T, body string) *config.Config {
	t.Helper()
	if body != "" {
		require.NoError(t, os.WriteFile("dataexplorer.yaml", []byte(body), 0o600))
	}
	cfg, err := config.LoadConfig("", nil)
	require.NoError(t, err)
	return cfg
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
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

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation: balanced code
// fences, non-empty headers and tables whose rows match the header width.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if n := strings.Count(md, "```"); n%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", n)
	}

	width := 0
	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
		if !strings.HasPrefix(trimmed, "|") {
			width = 0
			continue
		}
		cells := strings.Count(trimmed, "|") - 1
		if width == 0 {
			width = cells
		} else if cells != width {
			t.Errorf("table row at line %d has %d cells, want %d", i+1, cells, width)
		}
	}
}
