package chart_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/datakite/analytics-mcp/internal/platform"
	"github.com/datakite/analytics-mcp/internal/server"
	"github.com/datakite/analytics-mcp/internal/tools/common"
)

// RegisterChartTools registers chart management tools with the MCP server.
func RegisterChartTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("analytics_chart_list",
		mcp.WithDescription("Retrieve a list of charts from the Analytics platform. Results are paginated."),
	)

	s.AddTool(listTool, common.AuthenticatedHandler("analytics_chart_list", "chart", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/chart/")
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	getTool := mcp.NewTool("analytics_chart_get_by_id",
		mcp.WithDescription("Fetch details for a specific chart, including its visualization configuration."),
		mcp.WithNumber("chart_id",
			mcp.Required(),
			mcp.Description("ID of the chart to retrieve"),
		),
	)

	s.AddTool(getTool, common.AuthenticatedHandler("analytics_chart_get_by_id", "chart", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := request.RequireInt("chart_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodGet, fmt.Sprintf("/api/v1/chart/%d", id))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	createTool := mcp.NewTool("analytics_chart_create",
		mcp.WithDescription("Create a new chart in the Analytics platform. The visualization parameters are serialized into the chart's params field."),
		mcp.WithString("chart_name",
			mcp.Required(),
			mcp.Description("Name/title of the chart"),
		),
		mcp.WithNumber("datasource_id",
			mcp.Required(),
			mcp.Description("ID of the dataset or SQL table"),
		),
		mcp.WithString("datasource_type",
			mcp.Required(),
			mcp.Description("Type of datasource ('table' for datasets, 'query' for SQL)"),
		),
		mcp.WithString("viz_type",
			mcp.Required(),
			mcp.Description("Visualization type (e.g., 'bar', 'line', 'pie', 'big_number')"),
		),
		mcp.WithObject("params",
			mcp.Required(),
			mcp.Description("Visualization parameters including metrics, groupby, time_range, etc."),
		),
	)

	s.AddTool(createTool, common.AuthenticatedHandler("analytics_chart_create", "chart", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := request.RequireString("chart_name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			datasourceID, err := request.RequireInt("datasource_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			datasourceType, err := request.RequireString("datasource_type")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			vizType, err := request.RequireString("viz_type")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			params, ok := request.GetArguments()["params"].(map[string]any)
			if !ok {
				return mcp.NewToolResultError("params must be an object"), nil
			}

			// The platform stores visualization params as a JSON string
			// inside the chart record, not as nested JSON.
			encodedParams, err := json.Marshal(params)
			if err != nil {
				return nil, fmt.Errorf("encoding chart params: %w", err)
			}

			body := map[string]any{
				"slice_name":      name,
				"datasource_id":   datasourceID,
				"datasource_type": datasourceType,
				"viz_type":        vizType,
				"params":          string(encodedParams),
			}
			payload, err := sc.Session().Request(ctx, http.MethodPost, "/api/v1/chart/",
				platform.WithBody(body))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	updateTool := mcp.NewTool("analytics_chart_update",
		mcp.WithDescription("Update an existing chart's properties and visualization settings."),
		mcp.WithNumber("chart_id",
			mcp.Required(),
			mcp.Description("ID of the chart to update"),
		),
		mcp.WithObject("data",
			mcp.Required(),
			mcp.Description("Data to update, including name, description, viz_type, params, etc."),
		),
	)

	s.AddTool(updateTool, common.AuthenticatedHandler("analytics_chart_update", "chart", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := request.RequireInt("chart_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			data, ok := request.GetArguments()["data"].(map[string]any)
			if !ok {
				return mcp.NewToolResultError("data must be an object"), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodPut, fmt.Sprintf("/api/v1/chart/%d", id),
				platform.WithBody(data))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	deleteTool := mcp.NewTool("analytics_chart_delete",
		mcp.WithDescription("Delete a chart from the Analytics platform."),
		mcp.WithNumber("chart_id",
			mcp.Required(),
			mcp.Description("ID of the chart to delete"),
		),
	)

	s.AddTool(deleteTool, common.AuthenticatedHandler("analytics_chart_delete", "chart", "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := request.RequireInt("chart_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/chart/%d", id))
			if err != nil {
				return nil, err
			}
			if payload["error"] == nil {
				payload = map[string]any{"message": fmt.Sprintf("Chart %d deleted successfully", id)}
			}
			return common.JSONResult(payload)
		}))

	return nil
}
