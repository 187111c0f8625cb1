package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/gtasks-mcp/internal/instrumentation"
	"github.com/teemow/gtasks-mcp/internal/logging"
)

// Sentinel errors for credential resolution.
var (
	// ErrNoCredentials indicates no usable token could be obtained from any
	// source (environment, token file, refresh, or consent).
	ErrNoCredentials = errors.New("no Google credentials available")

	// ErrNoClientConfig indicates the OAuth client credentials file is missing.
	ErrNoClientConfig = errors.New("OAuth client credentials not found")
)

// Authenticator resolves Google OAuth credentials for accounts.
//
// Resolution order for each account:
//  1. Inline token JSON from the GOOGLE_TASKS_TOKEN environment variable
//  2. The on-disk token file, refreshed through the OAuth config when stale
//  3. An interactive browser consent flow, when AllowConsent is set
//
// Tokens obtained via refresh or consent are persisted back to the token
// file so subsequent runs skip the network round trip. Environment tokens
// are never written back.
type Authenticator struct {
	cfg *Config

	// AllowConsent enables the interactive browser consent fallback.
	// This should only be set for stdio transport on an interactive host.
	AllowConsent bool

	logger  *slog.Logger
	metrics *instrumentation.Metrics

	mu sync.Mutex
}

// NewAuthenticator creates an Authenticator over the given config.
func NewAuthenticator(cfg *Config) *Authenticator {
	return &Authenticator{
		cfg:    cfg,
		logger: slog.Default(),
	}
}

// SetLogger sets the logger used for credential resolution events.
func (a *Authenticator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		a.logger = logger
	}
}

// SetMetrics sets the metrics recorder for OAuth events.
func (a *Authenticator) SetMetrics(m *instrumentation.Metrics) {
	a.metrics = m
}

// OAuthConfig loads the OAuth client configuration from credentials.json.
func (a *Authenticator) OAuthConfig() (*oauth2.Config, error) {
	data, err := os.ReadFile(a.cfg.CredentialsPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoClientConfig, a.cfg.CredentialsPath())
	}

	conf, err := google.ConfigFromJSON(data, DefaultOAuthScopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid OAuth client credentials: %w", err)
	}

	return conf, nil
}

// TokenSourceForAccount resolves a token source for the account.
// The mutex serializes resolution so concurrent callers don't race a
// consent flow; the token file write itself stays last-writer-wins.
func (a *Authenticator) TokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// 1. Inline token from the environment.
	if tok, ok, err := tokenFromEnv(); ok {
		if err != nil {
			return nil, err
		}
		conf, err := a.OAuthConfig()
		if err != nil {
			// Without a client config the env token can't be refreshed;
			// use it as-is and fail per-call when it expires.
			a.logger.Debug("using environment token without refresh capability",
				logging.Account(account))
			return oauth2.StaticTokenSource(tok), nil
		}
		a.logger.Debug("using token from environment", logging.Account(account))
		return conf.TokenSource(ctx, tok), nil
	}

	// 2. Token file, refreshed and persisted through the OAuth config.
	if tok, err := a.loadTokenFile(account); err == nil {
		conf, cfgErr := a.OAuthConfig()
		if cfgErr != nil {
			return nil, cfgErr
		}
		return &persistingTokenSource{
			auth:    a,
			account: account,
			base:    conf.TokenSource(ctx, tok),
			last:    tok,
		}, nil
	}

	// 3. Interactive consent, if permitted.
	if !a.AllowConsent {
		return nil, fmt.Errorf("%w for account %q: set %s, provide %s, or run 'gtasks-mcp login'",
			ErrNoCredentials, accountLabel(account), EnvInlineToken, a.cfg.TokenPath(account))
	}

	conf, err := a.OAuthConfig()
	if err != nil {
		return nil, err
	}

	a.logger.Info("no stored token, starting interactive consent",
		logging.Account(account))

	tok, err := RunConsentFlow(ctx, conf, os.Stderr)
	if err != nil {
		if a.metrics != nil {
			a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		}
		return nil, fmt.Errorf("interactive consent failed: %w", err)
	}
	if a.metrics != nil {
		a.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)
	}

	if err := a.saveToken(account, tok); err != nil {
		a.logger.Warn("failed to persist token after consent",
			logging.Account(account), logging.Err(err))
	}

	return &persistingTokenSource{
		auth:    a,
		account: account,
		base:    conf.TokenSource(ctx, tok),
		last:    tok,
	}, nil
}

// HTTPClientForAccount returns an OAuth2-authenticated HTTP client for the account.
func (a *Authenticator) HTTPClientForAccount(ctx context.Context, account string) (*http.Client, error) {
	ts, err := a.TokenSourceForAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

// HasTokenForAccount reports whether any credential source exists for the account.
func (a *Authenticator) HasTokenForAccount(account string) bool {
	if os.Getenv(EnvInlineToken) != "" {
		return true
	}
	return a.cfg.HasToken(account)
}

// Config returns the underlying credential file configuration.
func (a *Authenticator) Config() *Config {
	return a.cfg
}

// loadTokenFile reads and parses the token file for the account.
func (a *Authenticator) loadTokenFile(account string) (*oauth2.Token, error) {
	data, err := os.ReadFile(a.cfg.TokenPath(account))
	if err != nil {
		return nil, err
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", a.cfg.TokenPath(account), err)
	}

	return &tok, nil
}

// saveToken writes the token to the account's token file with mode 0600.
// Concurrent writers race on the file; the last write wins.
func (a *Authenticator) saveToken(account string, tok *oauth2.Token) error {
	if err := a.cfg.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(a.cfg.TokenPath(account), data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// tokenFromEnv parses inline authorized-user token JSON from the environment.
// The second return value reports whether the variable was set at all.
func tokenFromEnv() (*oauth2.Token, bool, error) {
	raw := os.Getenv(EnvInlineToken)
	if raw == "" {
		return nil, false, nil
	}

	var tok oauth2.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, true, fmt.Errorf("invalid %s value: %w", EnvInlineToken, err)
	}

	return &tok, true, nil
}

func accountLabel(account string) string {
	if account == "" {
		return "default"
	}
	return account
}

// persistingTokenSource wraps a refreshing token source and writes any
// newly minted token back to the account's token file.
type persistingTokenSource struct {
	auth    *Authenticator
	account string
	base    oauth2.TokenSource

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.base.Token()
	if err != nil {
		if s.auth.metrics != nil {
			s.auth.metrics.RecordOAuthTokenRefresh(context.Background(), instrumentation.OAuthResultFailure)
		}
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	if s.last == nil || tok.AccessToken != s.last.AccessToken {
		if s.auth.metrics != nil {
			s.auth.metrics.RecordOAuthTokenRefresh(context.Background(), instrumentation.OAuthResultSuccess)
		}
		s.auth.logger.Debug("persisting refreshed token",
			logging.Account(s.account),
			slog.String("token", logging.SanitizeToken(tok.AccessToken)))
		if err := s.auth.saveToken(s.account, tok); err != nil {
			s.auth.logger.Warn("failed to persist refreshed token",
				logging.Account(s.account), logging.Err(err))
		}
		s.last = tok
	}

	return tok, nil
}
