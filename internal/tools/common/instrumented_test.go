package common

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/gtasks-mcp/internal/server"
)

func TestInstrumentedToolHandlerWithService_Success(t *testing.T) {
	ctx := context.Background()

	sc := server.NewServerContext(ctx, server.Options{})
	defer func() { _ = sc.Shutdown() }()

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := InstrumentedToolHandlerWithService("test_tool", "tasks", "list", sc, handler)

	result, err := wrapped(ctx, mcp.CallToolRequest{})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
	if result == nil {
		t.Error("expected result, got nil")
	}
}

func TestInstrumentedToolHandlerWithService_Error(t *testing.T) {
	ctx := context.Background()

	sc := server.NewServerContext(ctx, server.Options{})
	defer func() { _ = sc.Shutdown() }()

	expectedErr := errors.New("test error")
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	wrapped := InstrumentedToolHandlerWithService("test_tool", "tasks", "list", sc, handler)

	if _, err := wrapped(ctx, mcp.CallToolRequest{}); !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestInstrumentedToolHandlerWithService_PassThrough(t *testing.T) {
	ctx := context.Background()

	sc := server.NewServerContext(ctx, server.Options{})
	defer func() { _ = sc.Shutdown() }()

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	}

	wrapped := InstrumentedToolHandlerWithService("test_tool", "tasks", "list", sc, handler)

	result, err := wrapped(ctx, mcp.CallToolRequest{})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result == nil || result.IsError {
		t.Error("expected success result")
	}
}
