package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestServeCmdFlagDefaults(t *testing.T) {
	cmd := newServeCmd()

	tests := []struct {
		flag     string
		expected string
	}{
		{"transport", "stdio"},
		{"http-addr", ":8080"},
		{"read-only", "false"},
		{"debug", "false"},
		{"metrics-enabled", "true"},
		{"metrics-addr", ":9090"},
		{"config-dir", ""},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			f := cmd.Flags().Lookup(tt.flag)
			if f == nil {
				t.Fatalf("flag %q not registered", tt.flag)
			}
			if f.DefValue != tt.expected {
				t.Errorf("flag %q default = %q, want %q", tt.flag, f.DefValue, tt.expected)
			}
		})
	}
}

func TestRunServeRejectsUnknownTransport(t *testing.T) {
	t.Setenv("INSTRUMENTATION_ENABLED", "false")

	err := runServe("carrier-pigeon", false, ":8080", false, t.TempDir(), MetricsConfig{})
	if err == nil {
		t.Fatal("expected error for unknown transport")
	}
	if !strings.Contains(err.Error(), "unsupported transport type") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	if !strings.Contains(out.String(), "gtasks-mcp version") {
		t.Errorf("unexpected version output: %q", out.String())
	}
}

func TestLogoutCmdNoToken(t *testing.T) {
	var out bytes.Buffer
	cmd := newLogoutCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config-dir", t.TempDir()})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if !strings.Contains(out.String(), "no token stored") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestLogoutCmdRemovesToken(t *testing.T) {
	dir := t.TempDir()
	tokenPath := filepath.Join(dir, "token.json")
	if err := os.WriteFile(tokenPath, []byte(`{"access_token":"x"}`), 0600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := newLogoutCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config-dir", dir})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Error("token file should have been removed")
	}
	if !strings.Contains(out.String(), "removed token") {
		t.Errorf("unexpected output: %q", out.String())
	}
}
