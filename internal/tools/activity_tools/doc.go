// Package activity_tools provides MCP tools for user-centric platform
// data: recent activity, the current user's profile and roles, the
// navigation menu, and the server's connection configuration.
package activity_tools
