// Package tag_tools provides MCP tools for managing Analytics platform
// tags and their associations with charts and dashboards.
package tag_tools
