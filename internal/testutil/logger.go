// Package testutil provides helpers shared by package tests: a logger that
// writes through t.Log and access to the bundled sample dataset.
package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// SamplePath returns the absolute path of data/sample.csv at the module root.
func SamplePath(t testing.TB) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "cannot locate testutil source file")
	// logger.go lives in internal/testutil/.
	root := filepath.Join(filepath.Dir(filename), "..", "..")
	return filepath.Join(root, "data", "sample.csv")
}

// CopySample copies the sample dataset into dir and returns the new path.
func CopySample(t testing.TB, dir string) string {
	t.Helper()
	body, err := os.ReadFile(SamplePath(t))
	require.NoError(t, err)
	path := filepath.Join(dir, "sample.csv")
	require.NoError(t, os.WriteFile(path, body, 0o600))
	return path
}
