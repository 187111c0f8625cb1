package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-oauth/storage"
)

// TokenProvider is an interface for providing OAuth tokens for Google APIs.
// This abstraction allows different token sources (file-based, OAuth store, etc.)
type TokenProvider interface {
	// GetTokenForAccount retrieves an OAuth token for the specified account
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount checks if a token exists for the specified account
	HasTokenForAccount(account string) bool
}

// FileTokenProvider provides tokens via the credential resolution chain
// (environment, token file, refresh, consent). Used for stdio transport.
type FileTokenProvider struct {
	auth *Authenticator
}

// NewFileTokenProvider creates a file-based token provider over the authenticator.
func NewFileTokenProvider(auth *Authenticator) *FileTokenProvider {
	return &FileTokenProvider{auth: auth}
}

// GetTokenForAccount retrieves a token for the specified account.
func (p *FileTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	ts, err := p.auth.TokenSourceForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return token, nil
}

// HasTokenForAccount checks if a credential source exists for the account.
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	return p.auth.HasTokenForAccount(account)
}

// StoreTokenProvider provides tokens from an mcp-oauth TokenStore.
// Used for HTTP transport where tokens arrive via the MCP OAuth flow
// instead of local files.
type StoreTokenProvider struct {
	store storage.TokenStore
}

// NewStoreTokenProvider creates a token provider from an mcp-oauth TokenStore.
func NewStoreTokenProvider(store storage.TokenStore) *StoreTokenProvider {
	return &StoreTokenProvider{store: store}
}

// GetTokenForAccount retrieves a Google OAuth token for the specified account.
// The account is typically an email address keyed by the OAuth session.
func (p *StoreTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	return p.store.GetToken(ctx, account)
}

// HasTokenForAccount checks if a token exists for the specified account.
func (p *StoreTokenProvider) HasTokenForAccount(account string) bool {
	_, err := p.store.GetToken(context.Background(), account)
	return err == nil
}

// SaveToken saves a Google OAuth token for the given account.
// This is used when tokens are refreshed or initially acquired.
func (p *StoreTokenProvider) SaveToken(ctx context.Context, account string, token *oauth2.Token) error {
	return p.store.SaveToken(ctx, account, token)
}
