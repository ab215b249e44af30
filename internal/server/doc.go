// Package server provides the runtime scaffolding around the MCP
// server: the shared server context holding the platform session,
// health check endpoints for Kubernetes probes, and a dedicated
// Prometheus metrics server.
package server
