package instrumentation

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestNewToolInvocation(t *testing.T) {
	ti := NewToolInvocation("get_tasks")
	if ti.Tool != "get_tasks" {
		t.Errorf("Tool = %q, want %q", ti.Tool, "get_tasks")
	}
	if ti.StartTime.IsZero() {
		t.Error("StartTime should be set")
	}
}

func TestToolInvocation_Builders(t *testing.T) {
	ti := NewToolInvocation("create_task").
		WithUser("jane@example.com").
		WithAccount("work").
		WithService(ServiceTasks, OperationCreate).
		WithTasklist("@default")

	if ti.UserEmail != "jane@example.com" {
		t.Errorf("UserEmail = %q", ti.UserEmail)
	}
	if ti.Account != "work" {
		t.Errorf("Account = %q", ti.Account)
	}
	if ti.ServiceName != ServiceTasks {
		t.Errorf("ServiceName = %q", ti.ServiceName)
	}
	if ti.Operation != OperationCreate {
		t.Errorf("Operation = %q", ti.Operation)
	}
	if ti.Tasklist != "@default" {
		t.Errorf("Tasklist = %q", ti.Tasklist)
	}
}

func TestToolInvocation_Complete(t *testing.T) {
	ti := NewToolInvocation("delete_task")
	time.Sleep(time.Millisecond)
	ti.Complete(true, nil)

	if !ti.Success {
		t.Error("expected Success to be true")
	}
	if ti.Duration <= 0 {
		t.Error("expected positive duration")
	}
	if ti.Error != "" {
		t.Errorf("expected empty Error, got %q", ti.Error)
	}
	if ti.Status() != StatusSuccess {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusSuccess)
	}
}

func TestToolInvocation_CompleteWithError(t *testing.T) {
	ti := NewToolInvocation("move_task")
	ti.CompleteWithError(errors.New("task not found"))

	if ti.Success {
		t.Error("expected Success to be false")
	}
	if ti.Error != "task not found" {
		t.Errorf("Error = %q", ti.Error)
	}
	if ti.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusError)
	}
}

func TestToolInvocation_UserDomain(t *testing.T) {
	ti := NewToolInvocation("get_task").WithUser("jane@example.com")
	if ti.UserDomain() != "example.com" {
		t.Errorf("UserDomain() = %q, want %q", ti.UserDomain(), "example.com")
	}
}

func TestToolInvocation_LogAttrs_CapsTasklist(t *testing.T) {
	ti := NewToolInvocation("get_tasks").
		WithUser("jane@example.com").
		WithTasklist("MTIzNDU2Nzg5").
		CompleteSuccess()

	attrs := ti.LogAttrs()
	found := false
	for _, attr := range attrs {
		if attr.Key == "tasklist" {
			found = true
			if attr.Value.String() != "custom" {
				t.Errorf("tasklist attr = %q, want %q", attr.Value.String(), "custom")
			}
		}
		if attr.Key == "user" {
			t.Error("LogAttrs should not include the full user email")
		}
	}
	if !found {
		t.Error("expected tasklist attribute")
	}
}

func TestToolInvocation_LogAuditAttrs_IncludesPII(t *testing.T) {
	ti := NewToolInvocation("get_tasks").
		WithUser("jane@example.com").
		WithTasklist("MTIzNDU2Nzg5").
		CompleteSuccess()

	attrs := ti.LogAuditAttrs()
	var userValue, tasklistValue string
	for _, attr := range attrs {
		switch attr.Key {
		case "user":
			userValue = attr.Value.String()
		case "tasklist":
			tasklistValue = attr.Value.String()
		}
	}
	if userValue != "jane@example.com" {
		t.Errorf("user attr = %q, want full email", userValue)
	}
	if tasklistValue != "MTIzNDU2Nzg5" {
		t.Errorf("tasklist attr = %q, want uncapped id", tasklistValue)
	}
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	al := NewAuditLogger(logger)

	ti := NewToolInvocation("get_tasks").
		WithUser("jane@example.com").
		CompleteSuccess()

	al.LogToolInvocation(ti)

	output := buf.String()
	if !strings.Contains(output, "tool_executed") {
		t.Errorf("expected tool_executed message, got %q", output)
	}
	if strings.Contains(output, "jane@example.com") {
		t.Error("default audit logger should not log full email")
	}
}

func TestAuditLogger_LogToolInvocation_Failure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	al := NewAuditLogger(logger)

	ti := NewToolInvocation("delete_task").
		CompleteWithError(errors.New("boom"))

	al.LogToolInvocation(ti)

	output := buf.String()
	if !strings.Contains(output, "tool_failed") {
		t.Errorf("expected tool_failed message, got %q", output)
	}
	if !strings.Contains(output, "boom") {
		t.Errorf("expected error in output, got %q", output)
	}
}

func TestAuditLogger_IncludePII(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	al := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{
		Enabled:    true,
		IncludePII: true,
	})

	ti := NewToolInvocation("get_tasks").
		WithUser("jane@example.com").
		CompleteSuccess()

	al.LogToolInvocation(ti)

	if !strings.Contains(buf.String(), "jane@example.com") {
		t.Error("expected full email when IncludePII is enabled")
	}
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	al := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{
		Enabled: false,
	})

	ti := NewToolInvocation("get_tasks").CompleteSuccess()
	al.LogToolInvocation(ti)
	al.LogToolAudit(ti)

	if buf.Len() != 0 {
		t.Errorf("expected no output when disabled, got %q", buf.String())
	}
}
