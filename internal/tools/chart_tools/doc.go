// Package chart_tools provides MCP tools for managing Analytics
// platform charts and their visualization configuration.
package chart_tools
