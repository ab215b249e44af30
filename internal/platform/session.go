package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/datakite/analytics-mcp/internal/instrumentation"
	"github.com/datakite/analytics-mcp/internal/logging"
)

// Platform API endpoints used by the session core.
const (
	identityEndpoint = "/api/v1/me/"
	loginEndpoint    = "/api/v1/security/login"
	refreshEndpoint  = "/api/v1/security/refresh"
	csrfEndpoint     = "/api/v1/security/csrf_token/"
)

// requestTimeout is the single client-wide timeout for all platform
// calls. There are no per-call deadlines beyond this.
const requestTimeout = 30 * time.Second

// csrfHeader carries the anti-forgery token on mutating requests.
const csrfHeader = "X-CSRFToken"

// Config holds the settings needed to open a platform session.
type Config struct {
	// APIURL is the base URL of the analytics platform API.
	APIURL string

	// Username and Password are the fallback login credentials used
	// when the authenticate tool is called without explicit ones.
	Username string
	Password string

	// TokenCachePath is where the bearer token is persisted.
	TokenCachePath string

	// Logger defaults to slog.Default() when nil.
	Logger *slog.Logger

	// Metrics is optional; when set, authentication attempts and
	// platform API calls are recorded.
	Metrics *instrumentation.Metrics
}

// Session is the process-wide holder of the shared HTTP client and
// credential state for the analytics platform. One session is created
// when the server starts and closed when it stops; all tool
// invocations share it.
//
// The access and CSRF tokens are guarded by a mutex. Concurrent
// refreshes may still race at the platform level; the last write wins,
// which is acceptable under the single-credential-set assumption.
type Session struct {
	client *http.Client
	apiURL string
	cache  *TokenCache
	logger *slog.Logger

	username string
	password string

	metrics *instrumentation.Metrics

	mu          sync.RWMutex
	accessToken string
	csrfToken   string
}

// NewSession opens a session against the platform at cfg.APIURL. It
// loads a previously cached token and verifies it with one identity
// check; a stale token is discarded rather than retried, leaving the
// session valid but unauthenticated.
func NewSession(ctx context.Context, cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		apiURL:   strings.TrimRight(cfg.APIURL, "/"),
		cache:    NewTokenCache(cfg.TokenCachePath, logger),
		logger:   logger,
		username: cfg.Username,
		password: cfg.Password,
		metrics:  cfg.Metrics,
	}
	s.client = &http.Client{
		Timeout:   requestTimeout,
		Transport: &authTransport{session: s, base: http.DefaultTransport},
	}

	if cached := s.cache.Load(); cached != "" {
		s.setAccessToken(cached)
		s.logger.Info("using cached access token",
			"token", logging.SanitizeToken(cached))
		if !s.verifyCachedToken(ctx) {
			s.setAccessToken("")
		}
	}

	return s
}

// verifyCachedToken issues one identity-check GET for the token just
// loaded from disk. Any non-200 response or transport failure marks
// the cache stale.
func (s *Session) verifyCachedToken(ctx context.Context) bool {
	resp, err := s.get(ctx, identityEndpoint, nil)
	if err != nil {
		s.logger.Info("error verifying cached token", logging.Err(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Info("cached token is invalid, re-authentication required",
			"status", resp.StatusCode)
		return false
	}
	return true
}

// Close releases the session's pooled connections. Called exactly once
// in the normal shutdown path.
func (s *Session) Close() {
	s.client.CloseIdleConnections()
}

// APIURL returns the base URL the session is bound to.
func (s *Session) APIURL() string {
	return s.apiURL
}

// AccessToken returns the current bearer token, or an empty string
// when the session is unauthenticated.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// CSRFToken returns the current anti-forgery token, if any.
func (s *Session) CSRFToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.csrfToken
}

func (s *Session) setAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *Session) setCSRFToken(token string) {
	s.mu.Lock()
	s.csrfToken = token
	s.mu.Unlock()
}

// installToken persists and activates a freshly issued access token.
func (s *Session) installToken(token string) {
	s.cache.Store(token)
	s.setAccessToken(token)
}

// endpointURL joins the base URL with an endpoint path and optional
// query parameters.
func (s *Session) endpointURL(endpoint string, params url.Values) string {
	u := s.apiURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// get issues a GET to a platform endpoint. The Authorization header is
// injected by the session's transport.
func (s *Session) get(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpointURL(endpoint, params), nil)
	if err != nil {
		return nil, err
	}
	return s.client.Do(req)
}

// send issues a request with an optional JSON body and, for mutating
// verbs, the CSRF header when a token is available.
func (s *Session) send(ctx context.Context, method, endpoint string, body map[string]any, params url.Values) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpointURL(endpoint, params), reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		if token := s.CSRFToken(); token != "" {
			req.Header.Set(csrfHeader, token)
		}
	}
	return s.client.Do(req)
}

// readBody drains and closes a response body, returning it as a string
// for error reporting.
func readBody(resp *http.Response) string {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}
	return string(data)
}

// decodeJSON parses a response body into a generic JSON object.
func decodeJSON(resp *http.Response) (map[string]any, error) {
	defer resp.Body.Close()
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	return payload, nil
}

// authTransport injects the session's bearer token into every outgoing
// request. Removing the token from the session removes the header;
// this is the Go shape of the original client-wide default header.
type authTransport struct {
	session *Session
	base    http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if token := t.session.AccessToken(); token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return t.base.RoundTrip(req)
}
