package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTokenValidity_NoToken(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})
	s := newSession(t, fp)

	result := s.CheckTokenValidity(context.Background())

	assert.Equal(t, ValidityResult{Valid: false, Error: "No access token available"}, result)
	assert.Zero(t, fp.totalCalls())
}

func TestCheckTokenValidity_ValidToken(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"result": {"username": "admin"}}`)
	})
	s := newAuthenticatedSession(t, fp, "valid-token")

	result := s.CheckTokenValidity(context.Background())

	assert.True(t, result.Valid)
	assert.Empty(t, result.Error)
}

func TestCheckTokenValidity_RejectedToken(t *testing.T) {
	identityStatus := http.StatusOK
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, identityStatus, `{"msg": "Token has expired"}`)
	})
	s := newAuthenticatedSession(t, fp, "expiring-token")
	identityStatus = http.StatusUnauthorized

	result := s.CheckTokenValidity(context.Background())

	assert.False(t, result.Valid)
	assert.Equal(t, http.StatusUnauthorized, result.StatusCode)
	assert.Contains(t, result.Error, "Token has expired")
}

func TestRefreshToken_NoToken(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})
	s := newSession(t, fp)

	result := s.RefreshToken(context.Background())

	assert.Equal(t, "No access token to refresh. Please authenticate first.", result.Error)
	assert.Zero(t, fp.totalCalls())
}

func TestRefreshToken_ReplacesSessionAndCachedToken(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case identityEndpoint:
			writeJSON(w, http.StatusOK, `{}`)
		case refreshEndpoint:
			assert.Equal(t, http.MethodPost, r.Method)
			writeJSON(w, http.StatusOK, `{"access_token": "tok123"}`)
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	})

	cachePath := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(cachePath, []byte("old-token"), 0600))
	s := NewSession(context.Background(), Config{
		APIURL:         fp.server.URL,
		TokenCachePath: cachePath,
	})
	t.Cleanup(s.Close)

	result := s.RefreshToken(context.Background())

	require.False(t, result.Failed(), "refresh failed: %s", result.Error)
	assert.Equal(t, "Successfully refreshed access token", result.Message)
	assert.Equal(t, "tok123", result.AccessToken)
	assert.Equal(t, "tok123", s.AccessToken())

	cached, err := os.ReadFile(cachePath)
	require.NoError(t, err)
	assert.Equal(t, "tok123", string(cached))
}

func TestRefreshToken_PlatformRejects(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case identityEndpoint:
			writeJSON(w, http.StatusOK, `{}`)
		case refreshEndpoint:
			writeJSON(w, http.StatusUnauthorized, `{"msg": "refresh expired"}`)
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	})
	s := newAuthenticatedSession(t, fp, "old-token")

	result := s.RefreshToken(context.Background())

	assert.Contains(t, result.Error, "Failed to refresh token: 401")
	// The rejected refresh leaves the current token in place.
	assert.Equal(t, "old-token", s.AccessToken())
}

func TestAuthenticate_AlreadyValid(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != identityEndpoint {
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, `{}`)
	})
	s := newAuthenticatedSession(t, fp, "valid-token")

	result := s.Authenticate(context.Background(), "", "", true)

	assert.Equal(t, "Already authenticated with valid token", result.Message)
	assert.Equal(t, "valid-token", result.AccessToken)
	// One identity check during session setup plus one for this call;
	// no login or refresh traffic.
	assert.Equal(t, 2, fp.callCount(identityEndpoint))
	assert.Zero(t, fp.callCount(loginEndpoint))
	assert.Zero(t, fp.callCount(refreshEndpoint))
}

func TestAuthenticate_Login(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginEndpoint:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "admin", body["username"])
			assert.Equal(t, "secret", body["password"])
			assert.Equal(t, "db", body["provider"])
			assert.Equal(t, true, body["refresh"])
			writeJSON(w, http.StatusOK, `{"access_token": "fresh-token"}`)
		case csrfEndpoint:
			writeJSON(w, http.StatusOK, `{"result": "csrf-xyz"}`)
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	})
	s := newSession(t, fp)

	result := s.Authenticate(context.Background(), "admin", "secret", true)

	require.False(t, result.Failed(), "authenticate failed: %s", result.Error)
	assert.Equal(t, "Successfully authenticated with Analytics platform", result.Message)
	assert.Equal(t, "fresh-token", s.AccessToken())
	assert.Equal(t, "csrf-xyz", s.CSRFToken())
}

func TestAuthenticate_FallsBackToConfiguredCredentials(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginEndpoint:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "env-user", body["username"])
			assert.Equal(t, "env-pass", body["password"])
			writeJSON(w, http.StatusOK, `{"access_token": "env-token"}`)
		case csrfEndpoint:
			writeJSON(w, http.StatusOK, `{"result": "csrf-xyz"}`)
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	})
	s := NewSession(context.Background(), Config{
		APIURL:         fp.server.URL,
		Username:       "env-user",
		Password:       "env-pass",
		TokenCachePath: filepath.Join(t.TempDir(), "token"),
	})
	t.Cleanup(s.Close)

	result := s.Authenticate(context.Background(), "", "", false)

	require.False(t, result.Failed(), "authenticate failed: %s", result.Error)
	assert.Equal(t, "env-token", s.AccessToken())
}

func TestAuthenticate_NoCredentials(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})
	s := newSession(t, fp)

	result := s.Authenticate(context.Background(), "", "", false)

	assert.Equal(t, "Username and password must be provided via arguments or environment variables", result.Error)
	assert.Zero(t, fp.totalCalls())
}

func TestAuthenticate_LoginRejected(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"message": "Invalid login"}`)
	})
	s := newSession(t, fp)

	result := s.Authenticate(context.Background(), "admin", "wrong", false)

	assert.Contains(t, result.Error, "Failed to get access token: 401")
	assert.Empty(t, s.AccessToken())
}
