package platform

import (
	"context"
	"net/http"

	"github.com/datakite/analytics-mcp/internal/logging"
)

// FetchCSRFToken obtains a fresh anti-forgery token from the platform
// and stores it in the session. It returns the token, or an empty
// string on any failure. Failures are logged, never returned: CSRF
// provisioning is best-effort, and an existing token is never cleared
// by a failed fetch.
func (s *Session) FetchCSRFToken(ctx context.Context) string {
	resp, err := s.get(ctx, csrfEndpoint, nil)
	if err != nil {
		s.logger.Info("error fetching CSRF token", logging.Err(err))
		return ""
	}

	if resp.StatusCode != http.StatusOK {
		body := readBody(resp)
		s.logger.Info("failed to fetch CSRF token",
			"status", resp.StatusCode, "body", body)
		return ""
	}

	payload, err := decodeJSON(resp)
	if err != nil {
		s.logger.Info("error decoding CSRF token response", logging.Err(err))
		return ""
	}

	token, _ := payload["result"].(string)
	if token == "" {
		s.logger.Info("CSRF token missing from response")
		return ""
	}

	s.setCSRFToken(token)
	return token
}
