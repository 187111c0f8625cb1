package google

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewConfig_ExplicitDir(t *testing.T) {
	cfg := NewConfig("/tmp/gtasks-test")
	if cfg.Dir != "/tmp/gtasks-test" {
		t.Errorf("Dir = %q, want %q", cfg.Dir, "/tmp/gtasks-test")
	}
}

func TestNewConfig_EnvOverride(t *testing.T) {
	os.Setenv(EnvConfigDir, "/tmp/gtasks-env")
	defer os.Unsetenv(EnvConfigDir)

	cfg := NewConfig("")
	if cfg.Dir != "/tmp/gtasks-env" {
		t.Errorf("Dir = %q, want %q", cfg.Dir, "/tmp/gtasks-env")
	}

	// Explicit dir takes precedence over the environment
	cfg = NewConfig("/tmp/explicit")
	if cfg.Dir != "/tmp/explicit" {
		t.Errorf("Dir = %q, want %q", cfg.Dir, "/tmp/explicit")
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	os.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	defer os.Unsetenv("XDG_CONFIG_HOME")

	dir := DefaultConfigDir()
	want := filepath.Join("/tmp/xdg", AppName)
	if dir != want {
		t.Errorf("DefaultConfigDir() = %q, want %q", dir, want)
	}
}

func TestConfig_Paths(t *testing.T) {
	cfg := NewConfig("/etc/gtasks")

	if got := cfg.CredentialsPath(); got != "/etc/gtasks/credentials.json" {
		t.Errorf("CredentialsPath() = %q", got)
	}

	tests := []struct {
		account string
		want    string
	}{
		{"", "/etc/gtasks/token.json"},
		{"default", "/etc/gtasks/token.json"},
		{"work", "/etc/gtasks/token-work.json"},
	}

	for _, tt := range tests {
		if got := cfg.TokenPath(tt.account); got != tt.want {
			t.Errorf("TokenPath(%q) = %q, want %q", tt.account, got, tt.want)
		}
	}
}

func TestConfig_TokenLifecycle(t *testing.T) {
	dir := t.TempDir()
	cfg := NewConfig(dir)

	if cfg.HasToken("") {
		t.Error("expected no token initially")
	}

	if err := cfg.EnsureDir(); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}

	if err := os.WriteFile(cfg.TokenPath(""), []byte(`{"access_token":"x"}`), 0600); err != nil {
		t.Fatalf("write token: %v", err)
	}

	if !cfg.HasToken("") {
		t.Error("expected token to exist")
	}
	if cfg.HasToken("work") {
		t.Error("expected no token for named account")
	}

	if err := cfg.RemoveToken(""); err != nil {
		t.Fatalf("RemoveToken: %v", err)
	}
	if cfg.HasToken("") {
		t.Error("expected token to be removed")
	}
}

func TestConfig_HasCredentials(t *testing.T) {
	dir := t.TempDir()
	cfg := NewConfig(dir)

	if cfg.HasCredentials() {
		t.Error("expected no credentials initially")
	}

	if err := os.WriteFile(cfg.CredentialsPath(), []byte(`{}`), 0600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}

	if !cfg.HasCredentials() {
		t.Error("expected credentials to exist")
	}
}
