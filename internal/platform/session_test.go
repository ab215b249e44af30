package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlatform is an httptest-backed stand-in for the analytics
// platform that counts calls per endpoint path.
type fakePlatform struct {
	t *testing.T

	mu    sync.Mutex
	calls map[string]int

	handler http.HandlerFunc
	server  *httptest.Server
}

func newFakePlatform(t *testing.T, handler http.HandlerFunc) *fakePlatform {
	t.Helper()
	fp := &fakePlatform{
		t:       t,
		calls:   make(map[string]int),
		handler: handler,
	}
	fp.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fp.mu.Lock()
		fp.calls[r.URL.Path]++
		fp.mu.Unlock()
		fp.handler(w, r)
	}))
	t.Cleanup(fp.server.Close)
	return fp
}

func (fp *fakePlatform) callCount(path string) int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.calls[path]
}

func (fp *fakePlatform) totalCalls() int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	total := 0
	for _, n := range fp.calls {
		total += n
	}
	return total
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeTokenFile(t *testing.T, path, token string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(token), 0600))
}

// newSession opens an unauthenticated session against the fake
// platform with a fresh token cache.
func newSession(t *testing.T, fp *fakePlatform) *Session {
	t.Helper()
	s := NewSession(context.Background(), Config{
		APIURL:         fp.server.URL,
		TokenCachePath: filepath.Join(t.TempDir(), "token"),
	})
	t.Cleanup(s.Close)
	return s
}

// newAuthenticatedSession seeds the token cache so the session comes up
// holding the given token. The fake platform must answer the identity
// check with 200 for the token to survive.
func newAuthenticatedSession(t *testing.T, fp *fakePlatform, token string) *Session {
	t.Helper()
	cachePath := filepath.Join(t.TempDir(), "token")
	writeTokenFile(t, cachePath, token)

	s := NewSession(context.Background(), Config{
		APIURL:         fp.server.URL,
		TokenCachePath: cachePath,
	})
	t.Cleanup(s.Close)
	return s
}

func TestNewSession_ReusesValidCachedToken(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer cached-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"result": {"username": "admin"}}`)
	})

	s := newAuthenticatedSession(t, fp, "cached-token")

	assert.Equal(t, "cached-token", s.AccessToken())
	assert.Equal(t, 1, fp.callCount("/api/v1/me/"))
}

func TestNewSession_DiscardsStaleCachedToken(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"msg": "Token has expired"}`)
	})

	s := newAuthenticatedSession(t, fp, "stale-token")

	// Stale token is discarded, not retried; the session stays usable
	// but unauthenticated.
	assert.Empty(t, s.AccessToken())
	assert.Equal(t, 1, fp.callCount("/api/v1/me/"))
}

func TestNewSession_NoCachedToken(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})

	s := newSession(t, fp)

	assert.Empty(t, s.AccessToken())
	assert.Zero(t, fp.totalCalls())
}

func TestAuthTransport_OmitsHeaderWithoutToken(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{}`)
	})
	s := newSession(t, fp)

	resp, err := s.get(context.Background(), "/api/v1/me/", nil)
	require.NoError(t, err)
	resp.Body.Close()
}

func TestFetchCSRFToken(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"result": "csrf-abc"}`)
	})
	s := newSession(t, fp)

	token := s.FetchCSRFToken(context.Background())

	assert.Equal(t, "csrf-abc", token)
	assert.Equal(t, "csrf-abc", s.CSRFToken())
	assert.Equal(t, 1, fp.callCount("/api/v1/security/csrf_token/"))
}

func TestFetchCSRFToken_FailureKeepsExistingToken(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"msg": "boom"}`)
	})
	s := newSession(t, fp)
	s.setCSRFToken("existing")

	token := s.FetchCSRFToken(context.Background())

	assert.Empty(t, token)
	assert.Equal(t, "existing", s.CSRFToken())
}

func TestSendAttachesCSRFHeaderOnMutation(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "csrf-abc", r.Header.Get("X-CSRFToken"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		writeJSON(w, http.StatusOK, `{}`)
	})
	s := newSession(t, fp)
	s.setCSRFToken("csrf-abc")

	resp, err := s.send(context.Background(), http.MethodPost, "/api/v1/dashboard/", map[string]any{"dashboard_title": "x"}, nil)
	require.NoError(t, err)
	resp.Body.Close()
}
