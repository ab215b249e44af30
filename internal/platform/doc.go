// Package platform implements the session and request-dispatch core
// for the analytics platform API.
//
// A single Session is created at server start and shared by every tool
// invocation. It owns the HTTP client, the current bearer token, and
// the current CSRF token. The token lifecycle is: load the cached
// token from disk, verify it with one identity check, refresh it when
// the platform reports 401, and fall back to a full login when the
// refresh fails.
//
// All tool traffic goes through Session.Request, which normalizes the
// platform's responses: 200/201 become the parsed JSON payload, every
// other status becomes an error-shaped payload with status code and
// body text, and only transport failures surface as Go errors. The
// 401 recovery is the sole retry in the system: one refresh-or-login
// cycle, one re-issue of the original call.
//
// # Concurrency
//
// Token reads and writes are synchronized, but concurrent refreshes
// are not serialized: the last writer wins, which is acceptable for a
// single shared credential set. Connection pooling safety is the HTTP
// client's responsibility.
package platform
