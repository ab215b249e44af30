// Package explore_tools provides MCP tools for chart exploration state:
// form data storage and permalinks.
package explore_tools
