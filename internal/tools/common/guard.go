package common

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/datakite/analytics-mcp/internal/server"
)

// notAuthenticatedMessage is returned verbatim by guarded tools when no
// access token is held. Clients are expected to call
// analytics_authenticate and retry.
const notAuthenticatedMessage = "Not authenticated. Please authenticate first."

// ToolHandler is the handler signature registered with the MCP server.
// It is an alias so wrapped handlers stay assignable to the server's
// own handler type.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Authenticated rejects a tool invocation before the handler runs when
// the shared platform session holds no access token. The check is a
// local token-presence test, not a platform round trip; a stale token
// is caught later by the dispatcher's retry logic.
func Authenticated(sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		session := sc.Session()
		if session == nil || session.AccessToken() == "" {
			return mcp.NewToolResultError(notAuthenticatedMessage), nil
		}
		return handler(ctx, request)
	}
}

// ErrorNormalized converts handler errors into error-shaped tool
// results so transport and marshalling failures surface to the client
// as readable text rather than a protocol error.
func ErrorNormalized(toolName string, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := handler(ctx, request)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error in %s: %v", toolName, err)), nil
		}
		return result, nil
	}
}
