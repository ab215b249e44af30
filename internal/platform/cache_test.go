package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCache_LoadMissingFile(t *testing.T) {
	cache := NewTokenCache(filepath.Join(t.TempDir(), "no-such-file"), nil)
	assert.Empty(t, cache.Load())
}

func TestTokenCache_StoreThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics-mcp", "token")
	cache := NewTokenCache(path, nil)

	cache.Store("tok123")

	assert.Equal(t, "tok123", cache.Load())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestTokenCache_LoadTrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("tok123\n"), 0o600))

	cache := NewTokenCache(path, nil)

	assert.Equal(t, "tok123", cache.Load())
}

func TestTokenCache_StoreCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "token")
	cache := NewTokenCache(path, nil)

	cache.Store("tok123")

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}
