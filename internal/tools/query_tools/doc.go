// Package query_tools provides MCP tools for the Analytics platform's
// query history and saved queries.
package query_tools
