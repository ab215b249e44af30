// Package common provides shared functionality for MCP tool
// implementations: the authentication guard, error normalization,
// instrumented handler wrappers, and JSON result helpers.
package common
