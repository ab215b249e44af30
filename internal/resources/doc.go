// Package resources provides MCP resources for exposing user and session data.
// Resources are read-only data sources that MCP clients can fetch, such as the
// profile and roles of the platform user the server is operating as.
package resources
