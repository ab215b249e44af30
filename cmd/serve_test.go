package cmd

import (
	"context"
	"path/filepath"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/datakite/analytics-mcp/internal/platform"
	"github.com/datakite/analytics-mcp/internal/server"
)

func TestRegisterAllTools(t *testing.T) {
	session := platform.NewSession(context.Background(), platform.Config{
		APIURL:         "http://localhost:8080",
		TokenCachePath: filepath.Join(t.TempDir(), "token"),
	})
	sc := server.NewServerContext(context.Background(), session)
	defer func() { _ = sc.Shutdown() }()

	mcpSrv := mcpserver.NewMCPServer("test-server", "1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	if err := registerAllTools(mcpSrv, sc); err != nil {
		t.Fatalf("registerAllTools() error = %v", err)
	}
}

func TestRunServe_UnsupportedTransport(t *testing.T) {
	t.Setenv("ANALYTICS_TOKEN_CACHE", filepath.Join(t.TempDir(), "token"))
	t.Setenv("INSTRUMENTATION_ENABLED", "false")

	err := runServe("websocket", false, ":0", MetricsConfig{})
	if err == nil {
		t.Fatal("expected error for unsupported transport")
	}
}

func TestNewServeCmd_Flags(t *testing.T) {
	cmd := newServeCmd()

	for _, flag := range []string{"debug", "transport", "http-addr", "metrics-enabled", "metrics-addr"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("serve command missing flag %q", flag)
		}
	}

	if got := cmd.Flags().Lookup("transport").DefValue; got != "stdio" {
		t.Errorf("default transport = %q, want %q", got, "stdio")
	}
}
