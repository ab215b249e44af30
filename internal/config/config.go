package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// Environment variable names for process-wide configuration.
const (
	EnvAPIURL     = "ANALYTICS_API_URL"
	EnvUser       = "ANALYTICS_USER"
	EnvPass       = "ANALYTICS_PASS"
	EnvTokenCache = "ANALYTICS_TOKEN_CACHE"

	// DefaultAPIURL is used when ANALYTICS_API_URL is not set.
	DefaultAPIURL = "http://localhost:8080"
)

// Config holds the analytics platform connection settings. It is read
// once at startup and treated as read-only afterwards.
type Config struct {
	// APIURL is the base URL of the analytics platform API.
	APIURL string

	// Username and Password are the default login credentials. Either
	// may be empty; the authenticate tool also accepts explicit
	// credentials as arguments.
	Username string
	Password string

	// TokenCachePath is where the bearer token is persisted between
	// runs. Defaults to a file in the user config directory.
	TokenCachePath string
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		APIURL:         getEnvOrDefault(EnvAPIURL, DefaultAPIURL),
		Username:       os.Getenv(EnvUser),
		Password:       os.Getenv(EnvPass),
		TokenCachePath: os.Getenv(EnvTokenCache),
	}

	if _, err := url.Parse(cfg.APIURL); err != nil {
		return Config{}, fmt.Errorf("invalid %s %q: %w", EnvAPIURL, cfg.APIURL, err)
	}

	if cfg.TokenCachePath == "" {
		path, err := defaultTokenCachePath()
		if err != nil {
			return Config{}, fmt.Errorf("failed to determine token cache path: %w", err)
		}
		cfg.TokenCachePath = path
	}

	return cfg, nil
}

// defaultTokenCachePath returns the token cache location in the user
// config directory, e.g. ~/.config/analytics-mcp/token.
func defaultTokenCachePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "analytics-mcp", "token"), nil
}

// getEnvOrDefault returns the value of an environment variable or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
