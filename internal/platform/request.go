package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// requestOptions collects the optional parts of a dispatched request.
type requestOptions struct {
	body        map[string]any
	params      url.Values
	autoRefresh bool
}

// RequestOption customizes a single dispatched request.
type RequestOption func(*requestOptions)

// WithBody attaches a JSON request body.
func WithBody(body map[string]any) RequestOption {
	return func(o *requestOptions) { o.body = body }
}

// WithQueryParams attaches URL query parameters.
func WithQueryParams(params url.Values) RequestOption {
	return func(o *requestOptions) { o.params = params }
}

// WithoutAutoRefresh disables the transparent 401 re-authentication
// retry for this request.
func WithoutAutoRefresh() RequestOption {
	return func(o *requestOptions) { o.autoRefresh = false }
}

// Request is the uniform entry point for every platform tool. It
// builds the HTTP call, attaches auth and CSRF headers, recovers once
// from a 401 via the auto-refresh wrapper, and normalizes the outcome:
// a 200/201 returns the parsed JSON body; any other status returns an
// error-shaped payload carrying status code and response text.
// Transport failures are the only case that surfaces as a Go error,
// left to the caller's error-normalization guard.
func (s *Session) Request(ctx context.Context, method, endpoint string, opts ...RequestOption) (map[string]any, error) {
	options := requestOptions{autoRefresh: true}
	for _, opt := range opts {
		opt(&options)
	}

	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		// A tool passing any other verb is a bug, not a runtime
		// condition to report to the platform caller.
		return nil, &Error{Op: "request", Err: fmt.Errorf("unsupported HTTP method: %s", method)}
	}

	// Mutating calls want a CSRF token. Fetch lazily on first need;
	// absence does not block the call, the platform itself rejects if
	// it insists on one.
	if method != http.MethodGet && s.CSRFToken() == "" {
		s.FetchCSRFToken(ctx)
	}

	// The call is a zero-argument unit so the 401 wrapper can issue it
	// twice without re-deriving parameters. The request (and its body
	// reader) is rebuilt on each execution.
	call := func() (*http.Response, error) {
		if method == http.MethodGet {
			return s.get(ctx, endpoint, options.params)
		}
		return s.send(ctx, method, endpoint, options.body, options.params)
	}

	start := time.Now()
	var resp *http.Response
	var err error
	if options.autoRefresh {
		resp, err = s.withAutoRefresh(ctx, call)
	} else {
		resp, err = call()
	}
	if err != nil {
		s.recordRequest(ctx, method, 0, time.Since(start))
		return nil, err
	}
	s.recordRequest(ctx, method, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return map[string]any{
			"error": fmt.Sprintf("API request failed: %d - %s", resp.StatusCode, readBody(resp)),
		}, nil
	}

	payload, err := decodeJSON(resp)
	if err != nil {
		return nil, &Error{Op: "request", Err: err}
	}
	return payload, nil
}

// withAutoRefresh executes a platform call with the single recovery
// path this system has: a 401 triggers one token refresh, falling back
// to one full re-authentication, followed by exactly one re-issue of
// the original call. The second response is returned unconditionally.
func (s *Session) withAutoRefresh(ctx context.Context, call func() (*http.Response, error)) (*http.Response, error) {
	if s.AccessToken() == "" {
		return nil, &Error{Op: "request", Err: ErrNotAuthenticated}
	}

	resp, err := call()
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	s.logger.Info("received 401 Unauthorized, attempting token refresh")
	if refreshResult := s.RefreshToken(ctx); refreshResult.Failed() {
		s.logger.Info("token refresh failed, attempting re-authentication",
			"refresh_error", refreshResult.Error)
		if authResult := s.Authenticate(ctx, "", "", true); authResult.Failed() {
			return nil, &Error{Op: "request", Err: fmt.Errorf("authentication failed: %s", authResult.Error)}
		}
	}

	return call()
}

// RawGet fetches an endpoint and returns the raw response body and
// status code, for endpoints that answer with something other than
// JSON (CSV export). It bypasses the dispatcher's response mapping and
// the 401 retry.
func (s *Session) RawGet(ctx context.Context, endpoint string) (string, int, error) {
	resp, err := s.get(ctx, endpoint, nil)
	if err != nil {
		return "", 0, err
	}
	return readBody(resp), resp.StatusCode, nil
}

// recordRequest reports a dispatched platform call to the metrics
// recorder, when one is configured.
func (s *Session) recordRequest(ctx context.Context, method string, statusCode int, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordPlatformRequest(ctx, method, statusCode, duration)
}
