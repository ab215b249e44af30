// Package instrumentation provides OpenTelemetry metrics, tracing, and
// audit logging for the analytics-mcp server.
//
// # Metrics
//
// The package records four metric families:
//
//   - mcp_tool_invocations_total / mcp_tool_duration_seconds: one entry
//     per MCP tool call, labeled by tool name and status.
//   - platform_api_operations_total / platform_api_operation_duration_seconds:
//     tool-level platform operations, labeled by area and operation type.
//   - platform_http_requests_total / platform_http_request_duration_seconds:
//     every dispatched platform HTTP call, labeled by method and status
//     code. Endpoint paths are not labeled; they embed object IDs.
//   - platform_auth_attempts_total: login and refresh attempts by outcome.
//
// Metrics are exported via Prometheus (default), OTLP, or stdout,
// selected with METRICS_EXPORTER.
//
// # Tracing
//
// Tracing is disabled by default (TRACING_EXPORTER=none) and can
// export to OTLP or stdout. Tool invocations become spans named
// "mcp.tool/<name>".
//
// # Audit logging
//
// AuditLogger writes one structured log line per tool invocation with
// duration, outcome, and trace correlation.
package instrumentation
