package tag_tools

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

// RegisterTagTools registers tag management tools with the MCP server.
func RegisterTagTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("analytics_tag_list",
		mcp.WithDescription("Retrieve a list of tags from the Analytics platform."),
	)

	s.AddTool(listTool, common.AuthenticatedHandler("analytics_tag_list", "tag", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/tag/")
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	createTool := mcp.NewTool("analytics_tag_create",
		mcp.WithDescription("Create a new tag in the Analytics platform."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name for the tag"),
		),
	)

	s.AddTool(createTool, common.AuthenticatedHandler("analytics_tag_create", "tag", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := request.RequireString("name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodPost, "/api/v1/tag/",
				platform.WithBody(map[string]any{"name": name}))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	getTool := mcp.NewTool("analytics_tag_get_by_id",
		mcp.WithDescription("Fetch details for a specific tag."),
		mcp.WithNumber("tag_id",
			mcp.Required(),
			mcp.Description("ID of the tag to retrieve"),
		),
	)

	s.AddTool(getTool, common.AuthenticatedHandler("analytics_tag_get_by_id", "tag", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := request.RequireInt("tag_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodGet, fmt.Sprintf("/api/v1/tag/%d", id))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	objectsTool := mcp.NewTool("analytics_tag_objects",
		mcp.WithDescription("Retrieve tagged objects grouped by tag."),
	)

	s.AddTool(objectsTool, common.AuthenticatedHandler("analytics_tag_objects", "tag", "objects", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/tag/get_objects/")
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	deleteTool := mcp.NewTool("analytics_tag_delete",
		mcp.WithDescription("Delete a tag from the Analytics platform."),
		mcp.WithNumber("tag_id",
			mcp.Required(),
			mcp.Description("ID of the tag to delete"),
		),
	)

	s.AddTool(deleteTool, common.AuthenticatedHandler("analytics_tag_delete", "tag", "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := request.RequireInt("tag_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/tag/%d", id))
			if err != nil {
				return nil, err
			}
			if payload["error"] == nil {
				payload = map[string]any{"message": fmt.Sprintf("Tag %d deleted successfully", id)}
			}
			return common.JSONResult(payload)
		}))

	objectAddTool := mcp.NewTool("analytics_tag_object_add",
		mcp.WithDescription("Add a tag to an object such as a chart or dashboard."),
		mcp.WithString("object_type",
			mcp.Required(),
			mcp.Description("Type of the object ('chart', 'dashboard', etc.)"),
		),
		mcp.WithNumber("object_id",
			mcp.Required(),
			mcp.Description("ID of the object to tag"),
		),
		mcp.WithString("tag_name",
			mcp.Required(),
			mcp.Description("Name of the tag to apply"),
		),
	)

	s.AddTool(objectAddTool, common.AuthenticatedHandler("analytics_tag_object_add", "tag", "object_add", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			objectType, err := request.RequireString("object_type")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			objectID, err := request.RequireInt("object_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			tagName, err := request.RequireString("tag_name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodPost, "/api/v1/tag/tagged_objects",
				platform.WithBody(map[string]any{
					"object_type": objectType,
					"object_id":   objectID,
					"tag_name":    tagName,
				}))
			if err != nil {
				return nil, err
			}
			return common.JSONResult(payload)
		}))

	objectRemoveTool := mcp.NewTool("analytics_tag_object_remove",
		mcp.WithDescription("Remove a tag association from an object."),
		mcp.WithString("object_type",
			mcp.Required(),
			mcp.Description("Type of the object ('chart', 'dashboard', etc.)"),
		),
		mcp.WithNumber("object_id",
			mcp.Required(),
			mcp.Description("ID of the object to untag"),
		),
		mcp.WithString("tag_name",
			mcp.Required(),
			mcp.Description("Name of the tag to remove"),
		),
	)

	s.AddTool(objectRemoveTool, common.AuthenticatedHandler("analytics_tag_object_remove", "tag", "object_remove", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			objectType, err := request.RequireString("object_type")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			objectID, err := request.RequireInt("object_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			tagName, err := request.RequireString("tag_name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			payload, err := sc.Session().Request(ctx, http.MethodDelete,
				fmt.Sprintf("/api/v1/tag/%s/%d", objectType, objectID),
				platform.WithQueryParams(url.Values{"tag_name": {tagName}}))
			if err != nil {
				return nil, err
			}
			if payload["error"] == nil {
				payload = map[string]any{
					"message": fmt.Sprintf("Tag '%s' removed from %s %d successfully", tagName, objectType, objectID),
				}
			}
			return common.JSONResult(payload)
		}))

	return nil
}
