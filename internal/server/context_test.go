package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/datakite/analytics-mcp/internal/platform"
)

func newTestSession(t *testing.T) *platform.Session {
	t.Helper()
	s := platform.NewSession(context.Background(), platform.Config{
		APIURL:         "http://localhost:8080",
		TokenCachePath: filepath.Join(t.TempDir(), "token"),
	})
	t.Cleanup(s.Close)
	return s
}

func TestNewServerContext(t *testing.T) {
	session := newTestSession(t)
	sc := NewServerContext(context.Background(), session)

	if sc.Session() != session {
		t.Error("Session() did not return the session passed to NewServerContext")
	}
	if sc.IsShutdown() {
		t.Error("new server context should not be shutdown")
	}
	if sc.Context() == nil {
		t.Error("Context() returned nil")
	}
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := NewServerContext(context.Background(), newTestSession(t))

	if err := sc.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !sc.IsShutdown() {
		t.Error("IsShutdown() = false after Shutdown()")
	}

	select {
	case <-sc.Context().Done():
	default:
		t.Error("context not cancelled after Shutdown()")
	}

	// Second shutdown is a no-op
	if err := sc.Shutdown(); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}

func TestServerContext_NilSession(t *testing.T) {
	sc := NewServerContext(context.Background(), nil)

	if sc.Session() != nil {
		t.Error("Session() should be nil")
	}
	if err := sc.Shutdown(); err != nil {
		t.Errorf("Shutdown() with nil session error = %v", err)
	}
}
