package platform

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/datakite/analytics-mcp/internal/logging"
)

// TokenCache persists a single bearer token to a fixed path on disk so
// a restarted server can resume an existing platform session. The file
// holds the raw token bytes, nothing else. Writes are best-effort:
// a failure to persist never fails the authentication that produced
// the token.
type TokenCache struct {
	path   string
	logger *slog.Logger
}

// NewTokenCache creates a token cache backed by the file at path.
func NewTokenCache(path string, logger *slog.Logger) *TokenCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenCache{path: path, logger: logger}
}

// Path returns the cache file location.
func (c *TokenCache) Path() string {
	return c.path
}

// Load returns the cached token, or an empty string if the file is
// missing or unreadable. I/O failures are deliberately swallowed: a
// missing cache simply means the session starts unauthenticated.
func (c *TokenCache) Load() string {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Store overwrites the cache file with the given token. On failure it
// logs a warning and returns; callers must not treat persistence as a
// precondition for using the token.
func (c *TokenCache) Store(token string) {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		c.logger.Warn("could not create token cache directory", logging.Err(err))
		return
	}
	if err := os.WriteFile(c.path, []byte(token), 0o600); err != nil {
		c.logger.Warn("could not cache access token", logging.Err(err))
	}
}
