package server

import (
	"context"
	"testing"

	"github.com/teemow/gtasks-mcp/internal/testutil"
)

func TestServerContext_ServiceCaching(t *testing.T) {
	sc := NewServerContext(context.Background(), Options{})
	defer func() { _ = sc.Shutdown() }()

	fake := testutil.NewFakeService()
	sc.SetTasksServiceForAccount("work", fake)

	svc, err := sc.TasksServiceForAccount(context.Background(), "work")
	if err != nil {
		t.Fatalf("TasksServiceForAccount() error = %v", err)
	}
	if svc != fake {
		t.Error("TasksServiceForAccount() did not return the injected service")
	}
}

func TestServerContext_EmptyAccountIsDefault(t *testing.T) {
	sc := NewServerContext(context.Background(), Options{})
	defer func() { _ = sc.Shutdown() }()

	fake := testutil.NewFakeService()
	sc.SetTasksServiceForAccount("", fake)

	svc, err := sc.TasksServiceForAccount(context.Background(), "default")
	if err != nil {
		t.Fatalf("TasksServiceForAccount() error = %v", err)
	}
	if svc != fake {
		t.Error("empty account and \"default\" should share a cache entry")
	}
}

func TestServerContext_NoCredentialSource(t *testing.T) {
	sc := NewServerContext(context.Background(), Options{})
	defer func() { _ = sc.Shutdown() }()

	if _, err := sc.TasksServiceForAccount(context.Background(), "default"); err == nil {
		t.Error("expected error when no credential source is configured")
	}
}

func TestServerContext_ReadOnly(t *testing.T) {
	sc := NewServerContext(context.Background(), Options{ReadOnly: true})
	defer func() { _ = sc.Shutdown() }()

	if !sc.ReadOnly() {
		t.Error("ReadOnly() = false, want true")
	}
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := NewServerContext(context.Background(), Options{})

	if sc.IsShutdown() {
		t.Error("new context reports shutdown")
	}

	if err := sc.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !sc.IsShutdown() {
		t.Error("IsShutdown() = false after Shutdown()")
	}

	select {
	case <-sc.Context().Done():
	default:
		t.Error("lifecycle context not cancelled after Shutdown()")
	}

	// Second shutdown is a no-op.
	if err := sc.Shutdown(); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}
