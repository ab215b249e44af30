// Package database_tools provides MCP tools for managing Analytics
// platform database connections.
//
// Beyond the usual CRUD operations the package exposes the platform's
// introspection endpoints: tables, schemas, catalogs, function names,
// related objects, connection testing, and SQL and parameter
// validation.
package database_tools
