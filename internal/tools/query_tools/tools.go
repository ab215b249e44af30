package query_tools

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

// RegisterQueryTools registers query history and saved query tools
// with the MCP server.
func RegisterQueryTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("analytics_query_list",
		mcp.WithDescription("Retrieve the query history from the Analytics platform, including status, duration, and SQL."),
	)

	s.AddTool(listTool, common.AuthenticatedHandler("analytics_query_list", "query", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/query/")
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	getTool := mcp.NewTool("analytics_query_get_by_id",
		mcp.WithDescription("Fetch complete execution details for a specific query."),
		mcp.WithNumber("query_id",
			mcp.Required(),
			mcp.Description("ID of the query to retrieve"),
		),
	)

	s.AddTool(getTool, common.AuthenticatedHandler("analytics_query_get_by_id", "query", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := request.RequireInt("query_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodGet, fmt.Sprintf("/api/v1/query/%d", id))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	stopTool := mcp.NewTool("analytics_query_stop",
		mcp.WithDescription("Stop a running query by its client ID."),
		mcp.WithString("client_id",
			mcp.Required(),
			mcp.Description("Client ID of the query to stop"),
		),
	)

	s.AddTool(stopTool, common.AuthenticatedHandler("analytics_query_stop", "query", "stop", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			clientID, err := request.RequireString("client_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodPost, "/api/v1/query/stop",
				platform.WithBody(map[string]any{"client_id": clientID}))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	savedGetTool := mcp.NewTool("analytics_saved_query_get_by_id",
		mcp.WithDescription("Fetch details for a specific saved query, including its SQL text and database."),
		mcp.WithNumber("query_id",
			mcp.Required(),
			mcp.Description("ID of the saved query to retrieve"),
		),
	)

	s.AddTool(savedGetTool, common.AuthenticatedHandler("analytics_saved_query_get_by_id", "saved_query", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := request.RequireInt("query_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodGet, fmt.Sprintf("/api/v1/saved_query/%d", id))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	savedCreateTool := mcp.NewTool("analytics_saved_query_create",
		mcp.WithDescription("Save a SQL query for later reuse."),
		mcp.WithObject("query_data",
			mcp.Required(),
			mcp.Description("Query info including db_id, schema, sql, label, and description"),
		),
	)

	s.AddTool(savedCreateTool, common.AuthenticatedHandler("analytics_saved_query_create", "saved_query", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			queryData, ok := request.GetArguments()["query_data"].(map[string]any)
			if !ok {
				return mcp.NewToolResultError("query_data must be an object"), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodPost, "/api/v1/saved_query/",
				platform.WithBody(queryData))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	return nil
}
