package sqllab_tools

import (
	"context"
	"path/filepath"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/datakite/analytics-mcp/internal/platform"
	"github.com/datakite/analytics-mcp/internal/server"
)

func TestRegisterSQLLabTools(t *testing.T) {
	session := platform.NewSession(context.Background(), platform.Config{
		APIURL:         "http://localhost:8080",
		TokenCachePath: filepath.Join(t.TempDir(), "token"),
	})
	sc := server.NewServerContext(context.Background(), session)
	defer func() { _ = sc.Shutdown() }()

	s := mcpserver.NewMCPServer("test-server", "1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	if err := RegisterSQLLabTools(s, sc); err != nil {
		t.Fatalf("RegisterSQLLabTools() error = %v", err)
	}
}
