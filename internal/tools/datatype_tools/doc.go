// Package datatype_tools provides MCP tools for the Analytics
// platform's advanced data types.
package datatype_tools
