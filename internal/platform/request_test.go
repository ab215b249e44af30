package platform

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_Unauthenticated(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})
	s := newSession(t, fp)

	payload, err := s.Request(context.Background(), http.MethodGet, "/api/v1/dashboard/")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotAuthenticated))
	assert.Nil(t, payload)
	assert.Zero(t, fp.totalCalls())
}

func TestRequest_UnsupportedMethod(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})
	s := newSession(t, fp)

	_, err := s.Request(context.Background(), http.MethodPatch, "/api/v1/dashboard/")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported HTTP method: PATCH")
	assert.Zero(t, fp.totalCalls())
}

func TestRequest_Success(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case identityEndpoint:
			writeJSON(w, http.StatusOK, `{}`)
		case "/api/v1/dashboard/":
			assert.Equal(t, "Bearer valid-token", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, `{"count": 2, "result": []}`)
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	})
	s := newAuthenticatedSession(t, fp, "valid-token")

	payload, err := s.Request(context.Background(), http.MethodGet, "/api/v1/dashboard/")

	require.NoError(t, err)
	assert.Equal(t, float64(2), payload["count"])
	assert.Equal(t, 1, fp.callCount("/api/v1/dashboard/"))
}

func TestRequest_QueryParams(t *testing.T) {
	var gotQuery string
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case identityEndpoint:
			writeJSON(w, http.StatusOK, `{}`)
		default:
			gotQuery = r.URL.RawQuery
			writeJSON(w, http.StatusOK, `{}`)
		}
	})
	s := newAuthenticatedSession(t, fp, "valid-token")

	_, err := s.Request(context.Background(), http.MethodGet, "/api/v1/sqllab/results/",
		WithQueryParams(url.Values{"key": {"abc"}}))

	require.NoError(t, err)
	assert.Equal(t, "key=abc", gotQuery)
}

func TestRequest_ErrorStatusBecomesPayload(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case identityEndpoint:
			writeJSON(w, http.StatusOK, `{}`)
		case "/api/v1/dashboard/99":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("not found"))
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	})
	s := newAuthenticatedSession(t, fp, "valid-token")

	payload, err := s.Request(context.Background(), http.MethodGet, "/api/v1/dashboard/99")

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"error": "API request failed: 404 - not found"}, payload)
	// A 404 is a final answer, not a retry trigger.
	assert.Equal(t, 1, fp.callCount("/api/v1/dashboard/99"))
}

func TestRequest_RecoverOnceFrom401(t *testing.T) {
	var dashboardCalls atomic.Int32
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case identityEndpoint:
			writeJSON(w, http.StatusOK, `{}`)
		case refreshEndpoint:
			writeJSON(w, http.StatusOK, `{"access_token": "tok123"}`)
		case "/api/v1/dashboard/":
			if dashboardCalls.Add(1) == 1 {
				writeJSON(w, http.StatusUnauthorized, `{"msg": "Token has expired"}`)
				return
			}
			assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, `{"count": 1}`)
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	})
	s := newAuthenticatedSession(t, fp, "expired-token")

	payload, err := s.Request(context.Background(), http.MethodGet, "/api/v1/dashboard/")

	require.NoError(t, err)
	assert.Equal(t, float64(1), payload["count"])
	assert.Equal(t, 2, fp.callCount("/api/v1/dashboard/"))
	assert.Equal(t, 1, fp.callCount(refreshEndpoint))
	assert.Equal(t, "tok123", s.AccessToken())
}

func TestRequest_401FallsBackToReauthentication(t *testing.T) {
	var dashboardCalls, identityCalls atomic.Int32
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case identityEndpoint:
			// 200 during session setup, 401 for the validity check inside
			// the re-authentication fallback.
			if identityCalls.Add(1) == 1 {
				writeJSON(w, http.StatusOK, `{}`)
				return
			}
			writeJSON(w, http.StatusUnauthorized, `{}`)
		case refreshEndpoint:
			writeJSON(w, http.StatusUnauthorized, `{"msg": "refresh expired"}`)
		case loginEndpoint:
			writeJSON(w, http.StatusOK, `{"access_token": "relogin-token"}`)
		case csrfEndpoint:
			writeJSON(w, http.StatusOK, `{"result": "csrf-xyz"}`)
		case "/api/v1/dashboard/":
			if dashboardCalls.Add(1) == 1 {
				writeJSON(w, http.StatusUnauthorized, `{"msg": "Token has expired"}`)
				return
			}
			assert.Equal(t, "Bearer relogin-token", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, `{"count": 3}`)
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	})

	cachePath := t.TempDir() + "/token"
	writeTokenFile(t, cachePath, "expired-token")
	s := NewSession(context.Background(), Config{
		APIURL:         fp.server.URL,
		Username:       "admin",
		Password:       "secret",
		TokenCachePath: cachePath,
	})
	t.Cleanup(s.Close)

	payload, err := s.Request(context.Background(), http.MethodGet, "/api/v1/dashboard/")

	require.NoError(t, err)
	assert.Equal(t, float64(3), payload["count"])
	assert.Equal(t, 2, fp.callCount("/api/v1/dashboard/"))
	assert.Equal(t, 1, fp.callCount(loginEndpoint))
}

func TestRequest_401RecoveryFailure(t *testing.T) {
	var identityCalls atomic.Int32
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case identityEndpoint:
			if identityCalls.Add(1) == 1 {
				writeJSON(w, http.StatusOK, `{}`)
				return
			}
			writeJSON(w, http.StatusUnauthorized, `{}`)
		default:
			// Everything else is unauthorized: the call, the refresh,
			// and the re-login.
			writeJSON(w, http.StatusUnauthorized, `{"msg": "nope"}`)
		}
	})

	cachePath := t.TempDir() + "/token"
	writeTokenFile(t, cachePath, "expired-token")
	s := NewSession(context.Background(), Config{
		APIURL:         fp.server.URL,
		Username:       "admin",
		Password:       "wrong",
		TokenCachePath: cachePath,
	})
	t.Cleanup(s.Close)

	payload, err := s.Request(context.Background(), http.MethodGet, "/api/v1/dashboard/")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")
	assert.Nil(t, payload)
	// The original call is not re-issued after the recovery path fails.
	assert.Equal(t, 1, fp.callCount("/api/v1/dashboard/"))
}

func TestRequest_WithoutAutoRefresh(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case identityEndpoint:
			writeJSON(w, http.StatusOK, `{}`)
		case "/api/v1/dashboard/":
			writeJSON(w, http.StatusUnauthorized, `{"msg": "Token has expired"}`)
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	})
	s := newAuthenticatedSession(t, fp, "expired-token")

	payload, err := s.Request(context.Background(), http.MethodGet, "/api/v1/dashboard/",
		WithoutAutoRefresh())

	require.NoError(t, err)
	assert.Contains(t, payload["error"], "API request failed: 401")
	assert.Equal(t, 1, fp.callCount("/api/v1/dashboard/"))
}

func TestRequest_MutationFetchesCSRFTokenLazily(t *testing.T) {
	var gotCSRF string
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case identityEndpoint:
			writeJSON(w, http.StatusOK, `{}`)
		case csrfEndpoint:
			writeJSON(w, http.StatusOK, `{"result": "csrf-lazy"}`)
		case "/api/v1/dashboard/":
			gotCSRF = r.Header.Get("X-CSRFToken")
			writeJSON(w, http.StatusCreated, `{"id": 7}`)
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	})
	s := newAuthenticatedSession(t, fp, "valid-token")

	payload, err := s.Request(context.Background(), http.MethodPost, "/api/v1/dashboard/",
		WithBody(map[string]any{"dashboard_title": "Sales"}))

	require.NoError(t, err)
	assert.Equal(t, float64(7), payload["id"])
	assert.Equal(t, "csrf-lazy", gotCSRF)
	assert.Equal(t, 1, fp.callCount(csrfEndpoint))
}

func TestRawGet(t *testing.T) {
	fp := newFakePlatform(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case identityEndpoint:
			writeJSON(w, http.StatusOK, `{}`)
		case "/api/v1/sqllab/export/abc":
			w.Header().Set("Content-Type", "text/csv")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("id,name\n1,alpha\n"))
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	})
	s := newAuthenticatedSession(t, fp, "valid-token")

	body, status, err := s.RawGet(context.Background(), "/api/v1/sqllab/export/abc")

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "id,name\n1,alpha\n", body)
}
