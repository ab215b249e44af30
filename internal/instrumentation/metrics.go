package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrMethod    = "method"
	attrStatus    = "status"
	attrArea      = "area"
	attrOperation = "operation"
	attrTool      = "tool"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// Platform HTTP metrics (one entry per dispatched API call)
	platformRequestsTotal   metric.Int64Counter
	platformRequestDuration metric.Float64Histogram

	// Platform operation metrics (one entry per tool-level API operation)
	platformOperationsTotal   metric.Int64Counter
	platformOperationDuration metric.Float64Histogram

	// Authentication metrics
	authAttemptsTotal metric.Int64Counter

	// MCP tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.platformRequestsTotal, err = meter.Int64Counter(
		"platform_http_requests_total",
		metric.WithDescription("Total number of HTTP requests dispatched to the analytics platform"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform_http_requests_total counter: %w", err)
	}

	m.platformRequestDuration, err = meter.Float64Histogram(
		"platform_http_request_duration_seconds",
		metric.WithDescription("Analytics platform HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform_http_request_duration_seconds histogram: %w", err)
	}

	m.platformOperationsTotal, err = meter.Int64Counter(
		"platform_api_operations_total",
		metric.WithDescription("Total number of analytics platform API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform_api_operations_total counter: %w", err)
	}

	m.platformOperationDuration, err = meter.Float64Histogram(
		"platform_api_operation_duration_seconds",
		metric.WithDescription("Analytics platform API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform_api_operation_duration_seconds histogram: %w", err)
	}

	m.authAttemptsTotal, err = meter.Int64Counter(
		"platform_auth_attempts_total",
		metric.WithDescription("Total number of platform authentication attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform_auth_attempts_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordPlatformRequest records one dispatched platform HTTP call with
// method, response status code (0 for transport failures), and duration.
// Endpoint paths are deliberately not labeled: they embed object IDs
// and would explode metric cardinality.
func (m *Metrics) RecordPlatformRequest(ctx context.Context, method string, statusCode int, duration time.Duration) {
	if m.platformRequestsTotal == nil || m.platformRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.platformRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.platformRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordPlatformOperation records a platform API operation with area,
// operation type, status, and duration.
//
// Parameters:
//   - area: platform area (dashboard, chart, database, dataset, sqllab, ...)
//   - operation: operation type (list, get, create, update, delete, execute)
//   - status: result status ("success" or "error")
//   - duration: time taken for the operation
func (m *Metrics) RecordPlatformOperation(ctx context.Context, area, operation, status string, duration time.Duration) {
	if m.platformOperationsTotal == nil || m.platformOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrArea, area),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.platformOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.platformOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordAuthAttempt records a platform authentication attempt.
// Operation is "login" or "refresh"; status is "success" or "error".
func (m *Metrics) RecordAuthAttempt(ctx context.Context, operation, status string) {
	if m.authAttemptsTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.authAttemptsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordToolInvocation records an MCP tool invocation with tool name,
// status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
