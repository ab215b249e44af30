package activity_tools

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/datakite/analytics-mcp/internal/server"
	"github.com/datakite/analytics-mcp/internal/tools/common"
)

// RegisterActivityTools registers user activity, profile, menu and
// configuration tools with the MCP server.
func RegisterActivityTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	recentTool := mcp.NewTool("analytics_activity_get_recent",
		mcp.WithDescription("Retrieve recent activity for the current user, including viewed charts and dashboards."),
	)

	s.AddTool(recentTool, common.AuthenticatedHandler("analytics_activity_get_recent", "activity", "recent", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/log/recent_activity/")
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	currentUserTool := mcp.NewTool("analytics_user_get_current",
		mcp.WithDescription("Retrieve profile data for the currently authenticated user."),
	)

	s.AddTool(currentUserTool, common.AuthenticatedHandler("analytics_user_get_current", "user", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/me/")
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	rolesTool := mcp.NewTool("analytics_user_get_roles",
		mcp.WithDescription("Retrieve role information for the current user."),
	)

	s.AddTool(rolesTool, common.AuthenticatedHandler("analytics_user_get_roles", "user", "roles", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/me/roles/")
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	menuTool := mcp.NewTool("analytics_menu_get",
		mcp.WithDescription("Retrieve the platform navigation menu structure based on user permissions."),
	)

	s.AddTool(menuTool, common.AuthenticatedHandler("analytics_menu_get", "menu", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/menu/")
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	// Reading the configured API URL needs no platform session, so no
	// authentication guard.
	configTool := mcp.NewTool("analytics_config_get_api_url",
		mcp.WithDescription("Return the base URL of the Analytics platform this server is connected to."),
	)

	s.AddTool(configTool, common.PublicHandler("analytics_config_get_api_url", "config", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			apiURL := sc.Session().APIURL()
			return common.JSONResult(map[string]any{
				"api_url": apiURL,
				"message": "Connected to Analytics platform at: " + apiURL,
			})
		}))

	return nil
}
