package database_tools

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/datakite/analytics-mcp/internal/platform"
	"github.com/datakite/analytics-mcp/internal/server"
	"github.com/datakite/analytics-mcp/internal/tools/common"
)

// RegisterDatabaseTools registers database connection management tools
// with the MCP server.
func RegisterDatabaseTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("analytics_database_list",
		mcp.WithDescription("Retrieve a list of database connections from the Analytics platform. Results are paginated."),
	)

	s.AddTool(listTool, common.AuthenticatedHandler("analytics_database_list", "database", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/database/")
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	// The sub-resource lookups all share the same shape: one required
	// database_id, one GET.
	registerDatabaseSubresource(s, sc, "analytics_database_get_by_id", "get",
		"Fetch configuration details for a specific database connection.", "")
	registerDatabaseSubresource(s, sc, "analytics_database_get_tables", "tables",
		"Retrieve the list of tables for a given database, including schema and table name details.", "/tables/")
	registerDatabaseSubresource(s, sc, "analytics_database_schemas", "schemas",
		"Retrieve schema names for a specific database.", "/schemas/")
	registerDatabaseSubresource(s, sc, "analytics_database_get_catalogs", "catalogs",
		"Retrieve catalog names from a database that supports catalogs.", "/catalogs/")
	registerDatabaseSubresource(s, sc, "analytics_database_get_connection", "connection",
		"Retrieve detailed connection information for a database.", "/connection")
	registerDatabaseSubresource(s, sc, "analytics_database_get_function_names", "function_names",
		"Retrieve the function names supported by a database.", "/function_names/")
	registerDatabaseSubresource(s, sc, "analytics_database_get_related_objects", "related_objects",
		"Retrieve counts and lists of charts and dashboards associated with a database.", "/related_objects/")

	createTool := mcp.NewTool("analytics_database_create",
		mcp.WithDescription("Create a new database connection in the Analytics platform. The connection is created with DML, CTAS and CVAS allowed and exposed in SQL Lab."),
		mcp.WithString("engine",
			mcp.Required(),
			mcp.Description("Database engine (e.g., 'postgresql', 'mysql')"),
		),
		mcp.WithString("config_method",
			mcp.Required(),
			mcp.Description("Configuration method (typically 'sqlalchemy_form')"),
		),
		mcp.WithString("database_name",
			mcp.Required(),
			mcp.Description("Name for the database connection"),
		),
		mcp.WithString("connection_uri",
			mcp.Required(),
			mcp.Description("SQLAlchemy URI for the connection"),
		),
	)

	s.AddTool(createTool, common.AuthenticatedHandler("analytics_database_create", "database", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			engine, err := request.RequireString("engine")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			configMethod, err := request.RequireString("config_method")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			name, err := request.RequireString("database_name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			uri, err := request.RequireString("connection_uri")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			body := map[string]any{
				"engine":               engine,
				"configuration_method": configMethod,
				"database_name":        name,
				"sqlalchemy_uri":       uri,
				"allow_dml":            true,
				"allow_cvas":           true,
				"allow_ctas":           true,
				"expose_in_sqllab":     true,
			}
			payload, err := sc.Session().Request(ctx, http.MethodPost, "/api/v1/database/",
				platform.WithBody(body))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	testConnectionTool := mcp.NewTool("analytics_database_test_connection",
		mcp.WithDescription("Test a database connection with the given connection details."),
		mcp.WithObject("database_data",
			mcp.Required(),
			mcp.Description("Database connection details including connection_uri and other parameters"),
		),
	)

	s.AddTool(testConnectionTool, common.AuthenticatedHandler("analytics_database_test_connection", "database", "test_connection", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			data, ok := request.GetArguments()["database_data"].(map[string]any)
			if !ok {
				return mcp.NewToolResultError("database_data must be an object"), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodPost, "/api/v1/database/test_connection",
				platform.WithBody(data))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	updateTool := mcp.NewTool("analytics_database_update",
		mcp.WithDescription("Update an existing database connection's properties."),
		mcp.WithNumber("database_id",
			mcp.Required(),
			mcp.Description("ID of the database to update"),
		),
		mcp.WithObject("data",
			mcp.Required(),
			mcp.Description("Data to update, including database_name, connection_uri, password, and extra configs"),
		),
	)

	s.AddTool(updateTool, common.AuthenticatedHandler("analytics_database_update", "database", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := request.RequireInt("database_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			data, ok := request.GetArguments()["data"].(map[string]any)
			if !ok {
				return mcp.NewToolResultError("data must be an object"), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodPut, fmt.Sprintf("/api/v1/database/%d", id),
				platform.WithBody(data))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	deleteTool := mcp.NewTool("analytics_database_delete",
		mcp.WithDescription("Delete a database connection from the Analytics platform."),
		mcp.WithNumber("database_id",
			mcp.Required(),
			mcp.Description("ID of the database to delete"),
		),
	)

	s.AddTool(deleteTool, common.AuthenticatedHandler("analytics_database_delete", "database", "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := request.RequireInt("database_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/database/%d", id))
			if err != nil {
				return nil, err
			}
			if payload["error"] == nil {
				payload = map[string]any{"message": fmt.Sprintf("Database %d deleted successfully", id)}
			}
			return common.JSONResult(payload)
		}))

	validateSQLTool := mcp.NewTool("analytics_database_validate_sql",
		mcp.WithDescription("Validate arbitrary SQL against a database."),
		mcp.WithNumber("database_id",
			mcp.Required(),
			mcp.Description("ID of the database"),
		),
		mcp.WithString("sql",
			mcp.Required(),
			mcp.Description("SQL query to validate"),
		),
	)

	s.AddTool(validateSQLTool, common.AuthenticatedHandler("analytics_database_validate_sql", "database", "validate_sql", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := request.RequireInt("database_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			sql, err := request.RequireString("sql")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodPost,
				fmt.Sprintf("/api/v1/database/%d/validate_sql/", id),
				platform.WithBody(map[string]any{"sql": sql}))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	validateParametersTool := mcp.NewTool("analytics_database_validate_parameters",
		mcp.WithDescription("Validate database connection parameters without creating a connection."),
		mcp.WithObject("parameters",
			mcp.Required(),
			mcp.Description("Connection parameters to validate"),
		),
	)

	s.AddTool(validateParametersTool, common.AuthenticatedHandler("analytics_database_validate_parameters", "database", "validate_parameters", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			parameters, ok := request.GetArguments()["parameters"].(map[string]any)
			if !ok {
				return mcp.NewToolResultError("parameters must be an object"), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodPost, "/api/v1/database/validate_parameters/",
				platform.WithBody(parameters))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	return nil
}

// registerDatabaseSubresource registers a read-only tool that answers a
// GET on /api/v1/database/{id}<suffix> for a required database_id.
func registerDatabaseSubresource(s *mcpserver.MCPServer, sc *server.ServerContext, name, operation, description, suffix string) {
	tool := mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithNumber("database_id",
			mcp.Required(),
			mcp.Description("ID of the database"),
		),
	)

	s.AddTool(tool, common.AuthenticatedHandler(name, "database", operation, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := request.RequireInt("database_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodGet,
				fmt.Sprintf("/api/v1/database/%d%s", id, suffix))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))
}
