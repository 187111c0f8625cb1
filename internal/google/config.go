package google

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the application directory name under the user config dir.
	AppName = "gtasks-mcp"

	// CredentialsFile is the OAuth client credentials filename.
	CredentialsFile = "credentials.json"

	// TokenFile is the stored OAuth token filename for the default account.
	TokenFile = "token.json"

	// EnvInlineToken is the environment variable holding inline authorized-user
	// token JSON. When set it takes precedence over the token file.
	EnvInlineToken = "GOOGLE_TASKS_TOKEN"

	// EnvConfigDir overrides the configuration directory.
	EnvConfigDir = "GTASKS_CONFIG_DIR"
)

// Config holds the credential file locations.
type Config struct {
	// Dir is the configuration directory path.
	Dir string
}

// NewConfig creates a Config with the given or default config directory.
// If dir is empty, GTASKS_CONFIG_DIR is consulted, then
// XDG_CONFIG_HOME/gtasks-mcp, then $HOME/.config/gtasks-mcp.
func NewConfig(dir string) *Config {
	if dir == "" {
		dir = os.Getenv(EnvConfigDir)
	}
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{Dir: dir}
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// CredentialsPath returns the path to the OAuth client credentials file.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.Dir, CredentialsFile)
}

// TokenPath returns the path to the stored OAuth token file for the account.
// The default account uses token.json; named accounts use token-<name>.json.
func (c *Config) TokenPath(account string) string {
	if account == "" || account == "default" {
		return filepath.Join(c.Dir, TokenFile)
	}
	return filepath.Join(c.Dir, "token-"+account+".json")
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasCredentials checks if the OAuth client credentials file exists.
func (c *Config) HasCredentials() bool {
	_, err := os.Stat(c.CredentialsPath())
	return err == nil
}

// HasToken checks if a token file exists for the account.
func (c *Config) HasToken(account string) bool {
	_, err := os.Stat(c.TokenPath(account))
	return err == nil
}

// RemoveToken deletes the token file for the account.
func (c *Config) RemoveToken(account string) error {
	return os.Remove(c.TokenPath(account))
}
