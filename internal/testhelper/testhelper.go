// Package testhelper contains helpers to simplify tests
package testhelper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TempDir creates a temp dir that gets removed once the test finishes
func TempDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// WriteFile writes a file under dir, creating the intermediate
// directories if needed, and returns its full path
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()

	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, content, 0o644))
	return p
}
