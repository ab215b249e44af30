package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestWithOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	WithOperation(logger, "platform.refresh").Info("test message")

	output := buf.String()
	if !strings.Contains(output, "operation=platform.refresh") {
		t.Errorf("Expected operation attribute in output, got: %s", output)
	}
}

func TestErrNil(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("no error", Err(nil))

	output := buf.String()
	if strings.Contains(output, "error=") {
		t.Errorf("Expected no error attribute for nil error, got: %s", output)
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{
			name:     "empty token",
			token:    "",
			expected: "<empty>",
		},
		{
			name:     "short token",
			token:    "abc",
			expected: "[token:3 chars]",
		},
		{
			name:     "jwt-like token",
			token:    "eyJhbGciOiJIUzI1NiJ9.payload.sig",
			expected: "[token:32 chars]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeToken(tt.token)
			if result != tt.expected {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, result, tt.expected)
			}
		})
	}
}
