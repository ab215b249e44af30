// Package dashboard_tools provides MCP tools for managing Analytics
// platform dashboards: listing, lookup, creation, update, and deletion.
package dashboard_tools
