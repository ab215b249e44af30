package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the analytics-mcp application
var rootCmd = &cobra.Command{
	Use:   "analytics-mcp",
	Short: "MCP server for the Analytics platform",
	Long: `analytics-mcp exposes the Analytics platform's REST API as MCP
(Model Context Protocol) tools, so AI assistants can manage dashboards,
charts, datasets, databases, and SQL Lab queries on behalf of users.

The server keeps one authenticated platform session, caches the bearer
token between runs, and transparently recovers from token expiry.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "analytics-mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
