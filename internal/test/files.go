package test

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TempPath returns a path in a fresh temporary directory. An empty name gets a random one.
func TempPath(t *testing.T, name string) string {
	t.Helper()
	if name == "" {
		b := make([]byte, 8)
		_, err := rand.Read(b)
		require.NoError(t, err)
		name = hex.EncodeToString(b)
	}
	return filepath.Join(t.TempDir(), name)
}

// WriteFile writes data to a new file with mode 0600 and returns its path.
func WriteFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := TempPath(t, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// ReadFile returns the content of path, failing the test when it cannot be read.
func ReadFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
