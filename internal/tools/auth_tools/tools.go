package auth_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/datakite/analytics-mcp/internal/platform"
	"github.com/datakite/analytics-mcp/internal/server"
	"github.com/datakite/analytics-mcp/internal/tools/common"
)

// authResultPayload converts an authentication outcome into the
// JSON shape tools return.
func authResultPayload(result platform.AuthResult) map[string]any {
	if result.Failed() {
		return map[string]any{"error": result.Error}
	}
	return map[string]any{
		"message":      result.Message,
		"access_token": result.AccessToken,
	}
}

// RegisterAuthTools registers the authentication tools with the MCP
// server. None of them carry the authentication guard; they are the
// way in.
func RegisterAuthTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	checkTool := mcp.NewTool("analytics_auth_check_token_validity",
		mcp.WithDescription("Check if the current access token is valid. Verifies the token against the platform's identity endpoint."),
	)

	s.AddTool(checkTool, common.PublicHandler("analytics_auth_check_token_validity", "auth", "validate", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result := sc.Session().CheckTokenValidity(ctx)
			payload := map[string]any{"valid": result.Valid}
			if result.StatusCode != 0 {
				payload["status_code"] = result.StatusCode
			}
			if result.Error != "" {
				payload["error"] = result.Error
			}
			return common.JSONResult(payload)
		}))

	refreshTool := mcp.NewTool("analytics_auth_refresh_token",
		mcp.WithDescription("Refresh the access token using the platform's refresh endpoint. Requires an existing token."),
	)

	s.AddTool(refreshTool, common.PublicHandler("analytics_auth_refresh_token", "auth", "refresh", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return common.JSONResult(authResultPayload(sc.Session().RefreshToken(ctx)))
		}))

	authenticateTool := mcp.NewTool("analytics_auth_authenticate_user",
		mcp.WithDescription("Authenticate with the Analytics platform and obtain an access token. Credentials fall back to the configured environment variables."),
		mcp.WithString("username",
			mcp.Description("Analytics platform username (falls back to environment variable)"),
		),
		mcp.WithString("password",
			mcp.Description("Analytics platform password (falls back to environment variable)"),
		),
		mcp.WithBoolean("refresh",
			mcp.Description("Whether to refresh the token if invalid (defaults to true)"),
		),
	)

	s.AddTool(authenticateTool, common.PublicHandler("analytics_auth_authenticate_user", "auth", "login", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			username := request.GetString("username", "")
			password := request.GetString("password", "")
			refresh := request.GetBool("refresh", true)

			result := sc.Session().Authenticate(ctx, username, password, refresh)
			return common.JSONResult(authResultPayload(result))
		}))

	return nil
}
