package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/datakite/analytics-mcp/internal/config"
	"github.com/datakite/analytics-mcp/internal/instrumentation"
	"github.com/datakite/analytics-mcp/internal/platform"
	"github.com/datakite/analytics-mcp/internal/resources"
	"github.com/datakite/analytics-mcp/internal/server"
	"github.com/datakite/analytics-mcp/internal/tools/activity_tools"
	"github.com/datakite/analytics-mcp/internal/tools/auth_tools"
	"github.com/datakite/analytics-mcp/internal/tools/chart_tools"
	"github.com/datakite/analytics-mcp/internal/tools/dashboard_tools"
	"github.com/datakite/analytics-mcp/internal/tools/database_tools"
	"github.com/datakite/analytics-mcp/internal/tools/dataset_tools"
	"github.com/datakite/analytics-mcp/internal/tools/datatype_tools"
	"github.com/datakite/analytics-mcp/internal/tools/explore_tools"
	"github.com/datakite/analytics-mcp/internal/tools/query_tools"
	"github.com/datakite/analytics-mcp/internal/tools/sqllab_tools"
	"github.com/datakite/analytics-mcp/internal/tools/tag_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		transport      string
		httpAddr       string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Analytics
platform tools to AI assistants.

The server connects to the configured Analytics platform and exposes
dashboards, charts, datasets, databases, SQL Lab, tags, and user
activity as callable tools. On startup a previously cached access
token is verified and reused when still valid.

Transports:
  stdio           - communicate over stdin/stdout (default)
  streamable-http - serve MCP over HTTP

Configuration comes from the environment:
  ANALYTICS_API_URL     - base URL of the platform (default: http://localhost:8080)
  ANALYTICS_USER        - default login username
  ANALYTICS_PASS        - default login password
  ANALYTICS_TOKEN_CACHE - override path for the cached access token`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(transport, debugMode, httpAddr, MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			})
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8000", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", false, "Enable the Prometheus metrics server. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Address for the metrics server. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(transport string, debugMode bool, httpAddr string, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	setupLogging(debugMode)

	// Load metrics config from environment if not set via flags
	if !metricsConfig.Enabled {
		if os.Getenv("METRICS_ENABLED") == "true" {
			metricsConfig.Enabled = true
		}
	}
	if metricsConfig.Addr == "" || metricsConfig.Addr == server.DefaultMetricsAddr {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsConfig.Addr = addr
		}
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if transport != "stdio" {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	// Open the platform session
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var sessionMetrics *instrumentation.Metrics
	if provider.Enabled() {
		sessionMetrics = provider.Metrics()
	}
	session := platform.NewSession(shutdownCtx, platform.Config{
		APIURL:         cfg.APIURL,
		Username:       cfg.Username,
		Password:       cfg.Password,
		TokenCachePath: cfg.TokenCachePath,
		Metrics:        sessionMetrics,
	})

	serverContext := server.NewServerContext(shutdownCtx, session)

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging))
	}

	// Start metrics server if enabled. It also carries the health
	// endpoints, so stdio deployments keep their probes.
	var metricsServer *server.MetricsServer
	if metricsConfig.Enabled && provider.Enabled() {
		healthChecker := server.NewHealthChecker(serverContext)

		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
			HealthChecker:           healthChecker,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		// Wait for metrics server to be ready or fail
		select {
		case <-metricsReady:
			if transport != "stdio" {
				log.Printf("Metrics server started on %s", metricsServer.Addr())
			}
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if transport != "stdio" {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("analytics-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)

	// Register all tools
	if err := registerAllTools(mcpSrv, serverContext); err != nil {
		return err
	}

	// Register user resources
	if err := resources.RegisterUserResources(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register user resources: %w", err)
	}

	// Start the appropriate server based on transport type
	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		log.Printf("Starting analytics-mcp server with %s transport on %s", transport, httpAddr)
		return runStreamableHTTPServer(mcpSrv, httpAddr, shutdownCtx)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

// setupLogging configures the process-wide slog default. Logs go to
// stderr so the stdio transport keeps stdout clean for MCP frames.
func setupLogging(debugMode bool) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(mcpSrv *mcpserver.MCPServer, addr string, ctx context.Context) error {
	httpServer := mcpserver.NewStreamableHTTPServer(mcpSrv)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// registerAllTools registers all MCP tools with the server.
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext) error {
	// Define all tool registrations
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Auth",
			register: func() error {
				return auth_tools.RegisterAuthTools(mcpSrv, ctx)
			},
		},
		{
			name: "Dashboard",
			register: func() error {
				return dashboard_tools.RegisterDashboardTools(mcpSrv, ctx)
			},
		},
		{
			name: "Chart",
			register: func() error {
				return chart_tools.RegisterChartTools(mcpSrv, ctx)
			},
		},
		{
			name: "Database",
			register: func() error {
				return database_tools.RegisterDatabaseTools(mcpSrv, ctx)
			},
		},
		{
			name: "Dataset",
			register: func() error {
				return dataset_tools.RegisterDatasetTools(mcpSrv, ctx)
			},
		},
		{
			name: "SQL Lab",
			register: func() error {
				return sqllab_tools.RegisterSQLLabTools(mcpSrv, ctx)
			},
		},
		{
			name: "Query",
			register: func() error {
				return query_tools.RegisterQueryTools(mcpSrv, ctx)
			},
		},
		{
			name: "Activity",
			register: func() error {
				return activity_tools.RegisterActivityTools(mcpSrv, ctx)
			},
		},
		{
			name: "Tag",
			register: func() error {
				return tag_tools.RegisterTagTools(mcpSrv, ctx)
			},
		},
		{
			name: "Explore",
			register: func() error {
				return explore_tools.RegisterExploreTools(mcpSrv, ctx)
			},
		},
		{
			name: "Advanced Data Type",
			register: func() error {
				return datatype_tools.RegisterDataTypeTools(mcpSrv, ctx)
			},
		},
	}

	// Register all tools
	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}
