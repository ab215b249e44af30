package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the analytics-mcp package.
const TracerName = "github.com/datakite/analytics-mcp"

// Span attribute keys for operations.
const (
	// SpanAttrTool is the MCP tool name attribute.
	SpanAttrTool = "mcp.tool"

	// SpanAttrArea is the platform area attribute (dashboard, chart, ...).
	SpanAttrArea = "platform.area"

	// SpanAttrOperation is the operation type attribute.
	SpanAttrOperation = "platform.operation"

	// SpanAttrEndpoint is the platform API endpoint path.
	SpanAttrEndpoint = "platform.endpoint"

	// SpanAttrStatus is the operation status attribute.
	SpanAttrStatus = "mcp.status"
)

// StartToolSpan starts a span for an MCP tool invocation using the
// global tracer provider. The returned span must be ended by the caller.
func StartToolSpan(ctx context.Context, toolName string) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "mcp.tool/"+toolName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String(SpanAttrTool, toolName)),
	)
}

// EndToolSpan completes a tool span, recording the error when present.
func EndToolSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(SpanAttrStatus, StatusError))
	} else {
		span.SetAttributes(attribute.String(SpanAttrStatus, StatusSuccess))
	}
	span.End()
}

// GetTraceID extracts the trace ID from the current span in context.
// Returns empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().TraceID().String()
}
