package platform

import (
	"context"
	"fmt"
	"net/http"

	"github.com/datakite/analytics-mcp/internal/instrumentation"
	"github.com/datakite/analytics-mcp/internal/logging"
)

// ValidityResult reports whether the current access token is accepted
// by the platform.
type ValidityResult struct {
	Valid      bool   `json:"valid"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// AuthResult is the outcome of a refresh or authenticate operation.
// Exactly one of AccessToken or Error is set; Message accompanies a
// successful result.
type AuthResult struct {
	Message     string `json:"message,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Failed reports whether the operation ended in an error.
func (r AuthResult) Failed() bool {
	return r.Error != ""
}

// CheckTokenValidity verifies the current access token with one
// identity-check GET. Without a token it reports invalid immediately
// and makes no network call.
func (s *Session) CheckTokenValidity(ctx context.Context) ValidityResult {
	if s.AccessToken() == "" {
		return ValidityResult{Valid: false, Error: "No access token available"}
	}

	resp, err := s.get(ctx, identityEndpoint, nil)
	if err != nil {
		return ValidityResult{Valid: false, Error: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return ValidityResult{
			Valid:      false,
			StatusCode: resp.StatusCode,
			Error:      readBody(resp),
		}
	}
	resp.Body.Close()
	return ValidityResult{Valid: true}
}

// RefreshToken exchanges the current access token for a new one via
// the refresh endpoint. The new token replaces the session token and
// the cached file. Requires an existing token; there is nothing to
// refresh otherwise.
func (s *Session) RefreshToken(ctx context.Context) AuthResult {
	if s.AccessToken() == "" {
		return AuthResult{Error: "No access token to refresh. Please authenticate first."}
	}

	result := s.refreshToken(ctx)
	s.recordAuth(ctx, instrumentation.AuthOpRefresh, result)
	return result
}

func (s *Session) refreshToken(ctx context.Context) AuthResult {
	resp, err := s.send(ctx, http.MethodPost, refreshEndpoint, nil, nil)
	if err != nil {
		return AuthResult{Error: fmt.Sprintf("Error refreshing token: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return AuthResult{Error: fmt.Sprintf("Failed to refresh token: %d - %s",
			resp.StatusCode, readBody(resp))}
	}

	payload, err := decodeJSON(resp)
	if err != nil {
		return AuthResult{Error: fmt.Sprintf("Error refreshing token: %v", err)}
	}

	token, _ := payload["access_token"].(string)
	if token == "" {
		return AuthResult{Error: "No access token returned from refresh"}
	}

	s.installToken(token)
	s.logger.Info("access token refreshed",
		"token", logging.SanitizeToken(token))
	return AuthResult{
		Message:     "Successfully refreshed access token",
		AccessToken: token,
	}
}

// Authenticate establishes a valid access token. It is an idempotent
// no-op when the current token is still valid; otherwise it tries a
// refresh (when allowed) and falls back to a full login with the given
// credentials, or the configured defaults when they are empty.
func (s *Session) Authenticate(ctx context.Context, username, password string, refresh bool) AuthResult {
	if token := s.AccessToken(); token != "" {
		if validity := s.CheckTokenValidity(ctx); validity.Valid {
			return AuthResult{
				Message:     "Already authenticated with valid token",
				AccessToken: token,
			}
		}
		if refresh {
			if result := s.RefreshToken(ctx); !result.Failed() {
				return result
			}
		}
	}

	if username == "" {
		username = s.username
	}
	if password == "" {
		password = s.password
	}
	if username == "" || password == "" {
		return AuthResult{Error: "Username and password must be provided via arguments or environment variables"}
	}

	result := s.login(ctx, username, password, refresh)
	s.recordAuth(ctx, instrumentation.AuthOpLogin, result)
	return result
}

func (s *Session) login(ctx context.Context, username, password string, refresh bool) AuthResult {
	body := map[string]any{
		"username": username,
		"password": password,
		"provider": "db",
		"refresh":  refresh,
	}

	resp, err := s.send(ctx, http.MethodPost, loginEndpoint, body, nil)
	if err != nil {
		return AuthResult{Error: fmt.Sprintf("Authentication error: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return AuthResult{Error: fmt.Sprintf("Failed to get access token: %d - %s",
			resp.StatusCode, readBody(resp))}
	}

	payload, err := decodeJSON(resp)
	if err != nil {
		return AuthResult{Error: fmt.Sprintf("Authentication error: %v", err)}
	}

	token, _ := payload["access_token"].(string)
	if token == "" {
		return AuthResult{Error: "No access token returned"}
	}

	s.installToken(token)
	// Prefetch a CSRF token for subsequent mutating calls. Best-effort;
	// a failure here does not fail the authentication.
	s.FetchCSRFToken(ctx)

	s.logger.Info("authenticated with analytics platform",
		"token", logging.SanitizeToken(token))
	return AuthResult{
		Message:     "Successfully authenticated with Analytics platform",
		AccessToken: token,
	}
}

// recordAuth reports an authentication attempt to the metrics
// recorder, when one is configured.
func (s *Session) recordAuth(ctx context.Context, op string, result AuthResult) {
	if s.metrics == nil {
		return
	}
	status := instrumentation.StatusSuccess
	if result.Failed() {
		status = instrumentation.StatusError
	}
	s.metrics.RecordAuthAttempt(ctx, op, status)
}
