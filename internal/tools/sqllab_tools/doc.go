// Package sqllab_tools provides MCP tools for the Analytics platform's
// SQL Lab: query execution, formatting, cost estimation, result
// retrieval, and CSV export.
package sqllab_tools
