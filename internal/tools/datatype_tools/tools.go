package datatype_tools

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/datakite/analytics-mcp/internal/platform"
	"github.com/datakite/analytics-mcp/internal/server"
	"github.com/datakite/analytics-mcp/internal/tools/common"
)

// RegisterDataTypeTools registers advanced data type tools with the MCP server.
func RegisterDataTypeTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	convertTool := mcp.NewTool("analytics_advanced_data_type_convert",
		mcp.WithDescription("Convert a value to an advanced data type."),
		mcp.WithString("type_name",
			mcp.Required(),
			mcp.Description("Name of the advanced data type"),
		),
		mcp.WithString("value",
			mcp.Required(),
			mcp.Description("Value to convert"),
		),
	)

	s.AddTool(convertTool, common.AuthenticatedHandler("analytics_advanced_data_type_convert", "advanced_data_type", "convert", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			typeName, err := request.RequireString("type_name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			value, err := request.RequireString("value")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/advanced_data_type/convert",
				platform.WithQueryParams(url.Values{
					"type_name": {typeName},
					"value":     {value},
				}))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	listTool := mcp.NewTool("analytics_advanced_data_type_list",
		mcp.WithDescription("Retrieve the available advanced data types and their configurations."),
	)

	s.AddTool(listTool, common.AuthenticatedHandler("analytics_advanced_data_type_list", "advanced_data_type", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/advanced_data_type/types")
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	return nil
}
