package explore_tools

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/datakite/analytics-mcp/internal/platform"
	"github.com/datakite/analytics-mcp/internal/server"
	"github.com/datakite/analytics-mcp/internal/tools/common"
)

// RegisterExploreTools registers chart exploration tools with the MCP server.
func RegisterExploreTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	formDataCreateTool := mcp.NewTool("analytics_explore_form_data_create",
		mcp.WithDescription("Store chart exploration form data and return a key to retrieve it."),
		mcp.WithObject("form_data",
			mcp.Required(),
			mcp.Description("Chart configuration including datasource, metrics, and visualization settings"),
		),
	)

	s.AddTool(formDataCreateTool, common.AuthenticatedHandler("analytics_explore_form_data_create", "explore", "form_data_create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			formData, ok := request.GetArguments()["form_data"].(map[string]any)
			if !ok {
				return mcp.NewToolResultError("form_data must be an object"), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodPost, "/api/v1/explore/form_data",
				platform.WithBody(formData))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	formDataGetTool := mcp.NewTool("analytics_explore_form_data_get",
		mcp.WithDescription("Retrieve stored chart exploration form data by key."),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Key of the form data to retrieve"),
		),
	)

	s.AddTool(formDataGetTool, common.AuthenticatedHandler("analytics_explore_form_data_get", "explore", "form_data_get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			key, err := request.RequireString("key")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/explore/form_data/"+key)
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	permalinkCreateTool := mcp.NewTool("analytics_explore_permalink_create",
		mcp.WithDescription("Create a permalink for a chart exploration state."),
		mcp.WithObject("state",
			mcp.Required(),
			mcp.Description("State data for the permalink including form_data"),
		),
	)

	s.AddTool(permalinkCreateTool, common.AuthenticatedHandler("analytics_explore_permalink_create", "explore", "permalink_create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			state, ok := request.GetArguments()["state"].(map[string]any)
			if !ok {
				return mcp.NewToolResultError("state must be an object"), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodPost, "/api/v1/explore/permalink",
				platform.WithBody(state))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	permalinkGetTool := mcp.NewTool("analytics_explore_permalink_get",
		mcp.WithDescription("Retrieve a stored chart exploration state by its permalink key."),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Key of the permalink to retrieve"),
		),
	)

	s.AddTool(permalinkGetTool, common.AuthenticatedHandler("analytics_explore_permalink_get", "explore", "permalink_get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			key, err := request.RequireString("key")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/explore/permalink/"+key)
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	return nil
}
