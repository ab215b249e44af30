// Package logging provides structured logging utilities for the
// analytics-mcp server.
//
// This package centralizes logging patterns to ensure consistent,
// structured logging throughout the codebase using the standard
// library's slog package.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "platform.request")
//	logger.Info("request completed", logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("token refreshed", "token", logging.SanitizeToken(token))
//
// # Security Considerations
//
// Bearer and CSRF tokens are never logged directly; SanitizeToken
// reduces them to a length indicator.
package logging
