package common

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// JSONResult marshals a platform response payload into an indented
// JSON tool result. Payloads carrying an "error" key are still
// returned as plain text results; the platform's error envelope is
// part of the tool's answer, not a protocol failure.
func JSONResult(payload map[string]any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
