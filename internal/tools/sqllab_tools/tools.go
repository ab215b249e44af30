package sqllab_tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/datakite/analytics-mcp/internal/platform"
	"github.com/datakite/analytics-mcp/internal/server"
	"github.com/datakite/analytics-mcp/internal/tools/common"
)

// RegisterSQLLabTools registers SQL Lab tools with the MCP server.
func RegisterSQLLabTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	executeTool := mcp.NewTool("analytics_sqllab_execute_query",
		mcp.WithDescription("Execute a SQL query in the Analytics platform's SQL Lab. Queries run synchronously in a dedicated tab."),
		mcp.WithNumber("database_id",
			mcp.Required(),
			mcp.Description("ID of the database to query"),
		),
		mcp.WithString("sql",
			mcp.Required(),
			mcp.Description("SQL query to execute"),
		),
	)

	s.AddTool(executeTool, common.AuthenticatedHandler("analytics_sqllab_execute_query", "sqllab", "execute", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			databaseID, err := request.RequireInt("database_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			sql, err := request.RequireString("sql")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			// Query execution insists on a CSRF token; make sure one is
			// in place before dispatching.
			session := sc.Session()
			if session.CSRFToken() == "" {
				session.FetchCSRFToken(ctx)
			}

			body := map[string]any{
				"database_id":   databaseID,
				"sql":           sql,
				"schema":        "",
				"tab":           "MCP Query",
				"runAsync":      false,
				"select_as_cta": false,
			}
			payload, err := session.Request(ctx, http.MethodPost, "/api/v1/sqllab/execute/",
				platform.WithBody(body))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	savedQueriesTool := mcp.NewTool("analytics_sqllab_get_saved_queries",
		mcp.WithDescription("Retrieve a list of saved queries from SQL Lab."),
	)

	s.AddTool(savedQueriesTool, common.AuthenticatedHandler("analytics_sqllab_get_saved_queries", "sqllab", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/saved_query/")
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	formatTool := mcp.NewTool("analytics_sqllab_format_sql",
		mcp.WithDescription("Format a SQL query for better readability."),
		mcp.WithString("sql",
			mcp.Required(),
			mcp.Description("SQL query to format"),
		),
	)

	s.AddTool(formatTool, common.AuthenticatedHandler("analytics_sqllab_format_sql", "sqllab", "format", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			sql, err := request.RequireString("sql")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodPost, "/api/v1/sqllab/format_sql",
				platform.WithBody(map[string]any{"sql": sql}))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	resultsTool := mcp.NewTool("analytics_sqllab_get_results",
		mcp.WithDescription("Retrieve results of a previously executed asynchronous SQL query by its result key."),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Result key to retrieve"),
		),
	)

	s.AddTool(resultsTool, common.AuthenticatedHandler("analytics_sqllab_get_results", "sqllab", "results", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			key, err := request.RequireString("key")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/sqllab/results/",
				platform.WithQueryParams(url.Values{"key": {key}}))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	estimateTool := mcp.NewTool("analytics_sqllab_estimate_query_cost",
		mcp.WithDescription("Estimate the cost of executing a SQL query."),
		mcp.WithNumber("database_id",
			mcp.Required(),
			mcp.Description("ID of the database"),
		),
		mcp.WithString("sql",
			mcp.Required(),
			mcp.Description("SQL query to estimate"),
		),
		mcp.WithString("schema",
			mcp.Description("Optional schema name"),
		),
	)

	s.AddTool(estimateTool, common.AuthenticatedHandler("analytics_sqllab_estimate_query_cost", "sqllab", "estimate", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			databaseID, err := request.RequireInt("database_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			sql, err := request.RequireString("sql")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			body := map[string]any{
				"database_id": databaseID,
				"sql":         sql,
			}
			if schema := request.GetString("schema", ""); schema != "" {
				body["schema"] = schema
			}
			payload, err := sc.Session().Request(ctx, http.MethodPost, "/api/v1/sqllab/estimate",
				platform.WithBody(body))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	exportTool := mcp.NewTool("analytics_sqllab_export_query_results",
		mcp.WithDescription("Export SQL query results to CSV."),
		mcp.WithString("client_id",
			mcp.Required(),
			mcp.Description("Client ID of the query"),
		),
	)

	s.AddTool(exportTool, common.AuthenticatedHandler("analytics_sqllab_export_query_results", "sqllab", "export", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			clientID, err := request.RequireString("client_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			// The export endpoint answers CSV, not JSON, so it bypasses
			// the dispatcher's response mapping.
			body, status, err := sc.Session().RawGet(ctx, "/api/v1/sqllab/export/"+clientID)
			if err != nil {
				return common.JSONResult(map[string]any{
					"error": fmt.Sprintf("Error exporting query results: %v", err),
				})
			}
			if status != http.StatusOK {
				return common.JSONResult(map[string]any{
					"error": fmt.Sprintf("Failed to export query results: %d - %s", status, body),
				})
			}
			return common.JSONResult(map[string]any{
				"message": "Query results exported successfully",
				"data":    body,
			})
		}))

	bootstrapTool := mcp.NewTool("analytics_sqllab_get_bootstrap_data",
		mcp.WithDescription("Retrieve SQL Lab configuration data including allowed databases and settings."),
	)

	s.AddTool(bootstrapTool, common.AuthenticatedHandler("analytics_sqllab_get_bootstrap_data", "sqllab", "bootstrap", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/sqllab/")
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	return nil
}
