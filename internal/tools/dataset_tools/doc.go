// Package dataset_tools provides MCP tools for managing Analytics
// platform datasets.
package dataset_tools
