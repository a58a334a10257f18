// Package testutil provides common test helpers for steamshelf.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestEnv is a temporary directory that tests can write config files into.
// Paths outside the directory are rejected.
type TestEnv struct {
	t       *testing.T
	rootDir string
}

// NewTestEnv creates a TestEnv that is removed when the test completes.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return &TestEnv{t: t, rootDir: t.TempDir()}
}

// RootDir returns the root directory of the environment.
func (e *TestEnv) RootDir() string {
	return e.rootDir
}

// Path joins elem onto the root and fails the test if the result escapes it.
func (e *TestEnv) Path(elem ...string) string {
	e.t.Helper()

	p := filepath.Clean(filepath.Join(e.rootDir, filepath.Join(elem...)))
	root := filepath.Clean(e.rootDir)
	if p != root && !strings.HasPrefix(p, root+string(filepath.Separator)) {
		e.t.Fatalf("path %q escapes test sandbox %q", p, e.rootDir)
	}
	return p
}

// WriteFile writes content to path, creating parent directories.
func (e *TestEnv) WriteFile(path, content string) {
	e.t.Helper()

	abs := e.Path(path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		e.t.Fatalf("failed to create directory for %q: %v", abs, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		e.t.Fatalf("failed to write file %q: %v", abs, err)
	}
}

// Chdir switches the working directory to the environment root until the
// test completes.
func (e *TestEnv) Chdir() {
	e.t.Helper()
	e.t.Chdir(e.rootDir)
}

// SetEnv sets an environment variable for the duration of the test.
func (e *TestEnv) SetEnv(key, value string) {
	e.t.Helper()
	e.t.Setenv(key, value)
}
