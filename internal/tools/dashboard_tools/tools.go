package dashboard_tools

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

// RegisterDashboardTools registers dashboard management tools with the MCP server.
func RegisterDashboardTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("analytics_dashboard_list",
		mcp.WithDescription("Retrieve a list of dashboards from the Analytics platform. Results are paginated."),
	)

	s.AddTool(listTool, common.AuthenticatedHandler("analytics_dashboard_list", "dashboard", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/dashboard/")
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	getTool := mcp.NewTool("analytics_dashboard_get_by_id",
		mcp.WithDescription("Fetch details for a specific dashboard, including components and layout."),
		mcp.WithNumber("dashboard_id",
			mcp.Required(),
			mcp.Description("ID of the dashboard to retrieve"),
		),
	)

	s.AddTool(getTool, common.AuthenticatedHandler("analytics_dashboard_get_by_id", "dashboard", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := request.RequireInt("dashboard_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodGet, fmt.Sprintf("/api/v1/dashboard/%d", id))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	createTool := mcp.NewTool("analytics_dashboard_create",
		mcp.WithDescription("Create a new dashboard in the Analytics platform."),
		mcp.WithString("dashboard_title",
			mcp.Required(),
			mcp.Description("Title of the dashboard"),
		),
		mcp.WithObject("json_metadata",
			mcp.Description("Optional JSON metadata for dashboard configuration"),
		),
	)

	s.AddTool(createTool, common.AuthenticatedHandler("analytics_dashboard_create", "dashboard", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			title, err := request.RequireString("dashboard_title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			body := map[string]any{"dashboard_title": title}
			if metadata, ok := request.GetArguments()["json_metadata"].(map[string]any); ok && len(metadata) > 0 {
				body["json_metadata"] = metadata
			}
			payload, err := sc.Session().Request(ctx, http.MethodPost, "/api/v1/dashboard/",
				platform.WithBody(body))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	updateTool := mcp.NewTool("analytics_dashboard_update",
		mcp.WithDescription("Update an existing dashboard's properties such as title, slug, owners, position, and metadata."),
		mcp.WithNumber("dashboard_id",
			mcp.Required(),
			mcp.Description("ID of the dashboard to update"),
		),
		mcp.WithObject("data",
			mcp.Required(),
			mcp.Description("Data to update, including dashboard_title, slug, owners, position, and metadata"),
		),
	)

	s.AddTool(updateTool, common.AuthenticatedHandler("analytics_dashboard_update", "dashboard", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := request.RequireInt("dashboard_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			data, ok := request.GetArguments()["data"].(map[string]any)
			if !ok {
				return mcp.NewToolResultError("data must be an object"), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodPut, fmt.Sprintf("/api/v1/dashboard/%d", id),
				platform.WithBody(data))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	deleteTool := mcp.NewTool("analytics_dashboard_delete",
		mcp.WithDescription("Delete a dashboard from the Analytics platform."),
		mcp.WithNumber("dashboard_id",
			mcp.Required(),
			mcp.Description("ID of the dashboard to delete"),
		),
	)

	s.AddTool(deleteTool, common.AuthenticatedHandler("analytics_dashboard_delete", "dashboard", "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := request.RequireInt("dashboard_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/dashboard/%d", id))
			if err != nil {
				return nil, err
			}
			if payload["error"] == nil {
				payload = map[string]any{"message": fmt.Sprintf("Dashboard %d deleted successfully", id)}
			}
			return common.JSONResult(payload)
		}))

	return nil
}
