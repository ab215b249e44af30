package dataset_tools

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

// RegisterDatasetTools registers dataset management tools with the MCP server.
func RegisterDatasetTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("analytics_dataset_list",
		mcp.WithDescription("Retrieve a list of datasets from the Analytics platform. Results are paginated."),
	)

	s.AddTool(listTool, common.AuthenticatedHandler("analytics_dataset_list", "dataset", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/dataset/")
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	getTool := mcp.NewTool("analytics_dataset_get_by_id",
		mcp.WithDescription("Fetch details for a specific dataset, including its columns and metrics."),
		mcp.WithNumber("dataset_id",
			mcp.Required(),
			mcp.Description("ID of the dataset to retrieve"),
		),
	)

	s.AddTool(getTool, common.AuthenticatedHandler("analytics_dataset_get_by_id", "dataset", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := request.RequireInt("dataset_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodGet, fmt.Sprintf("/api/v1/dataset/%d", id))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	createTool := mcp.NewTool("analytics_dataset_create",
		mcp.WithDescription("Create a new dataset from an existing database table or view."),
		mcp.WithString("table_name",
			mcp.Required(),
			mcp.Description("Name of the physical table in the database"),
		),
		mcp.WithNumber("database_id",
			mcp.Required(),
			mcp.Description("ID of the database where the table exists"),
		),
		mcp.WithString("schema",
			mcp.Description("Optional database schema name where the table is located"),
		),
		mcp.WithArray("owners",
			mcp.Description("Optional list of user IDs who should own this dataset"),
		),
	)

	s.AddTool(createTool, common.AuthenticatedHandler("analytics_dataset_create", "dataset", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			tableName, err := request.RequireString("table_name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			databaseID, err := request.RequireInt("database_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			body := map[string]any{
				"table_name": tableName,
				"database":   databaseID,
			}
			if schema := request.GetString("schema", ""); schema != "" {
				body["schema"] = schema
			}
			if owners, ok := request.GetArguments()["owners"].([]any); ok && len(owners) > 0 {
				body["owners"] = owners
			}

			payload, err := sc.Session().Request(ctx, http.MethodPost, "/api/v1/dataset/",
				platform.WithBody(body))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	return nil
}
