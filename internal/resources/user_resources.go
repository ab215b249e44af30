package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/datakite/analytics-mcp/internal/server"
)

// RegisterUserResources registers session-specific user resources.
// These resources describe the platform account the server is
// currently operating as.
func RegisterUserResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	profileResource := mcp.NewResource(
		"analytics://user/profile",
		"Current User Profile",
		mcp.WithResourceDescription("Information about the currently authenticated platform user"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(profileResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleUserProfile(ctx, request, sc)
	})

	rolesResource := mcp.NewResource(
		"analytics://user/roles",
		"Current User Roles",
		mcp.WithResourceDescription("Roles and permissions of the currently authenticated platform user"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(rolesResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleUserRoles(ctx, request, sc)
	})

	return nil
}

// handleUserProfile returns the platform's view of the current user.
func handleUserProfile(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/me/")
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return jsonResourceContents(request, payload)
}

// handleUserRoles returns the roles assigned to the current user.
func handleUserRoles(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	payload, err := sc.Session().Request(ctx, http.MethodGet, "/api/v1/me/roles/")
	if err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}
	return jsonResourceContents(request, payload)
}

func jsonResourceContents(request mcp.ReadResourceRequest, payload map[string]any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
