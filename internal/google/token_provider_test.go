package google

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-oauth/storage/memory"
)

func TestStoreTokenProvider(t *testing.T) {
	store := memory.New()
	defer store.Stop()

	provider := NewStoreTokenProvider(store)
	require.NotNil(t, provider)

	ctx := context.Background()
	account := "test-user@example.com"

	token := &oauth2.Token{
		AccessToken:  "test-access-token",
		RefreshToken: "test-refresh-token",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}

	err := provider.SaveToken(ctx, account, token)
	require.NoError(t, err)

	retrieved, err := provider.GetTokenForAccount(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, token.AccessToken, retrieved.AccessToken)
	assert.Equal(t, token.RefreshToken, retrieved.RefreshToken)
	assert.Equal(t, token.TokenType, retrieved.TokenType)
}

func TestStoreTokenProvider_NonExistentAccount(t *testing.T) {
	store := memory.New()
	defer store.Stop()

	provider := NewStoreTokenProvider(store)

	_, err := provider.GetTokenForAccount(context.Background(), "nonexistent@example.com")
	assert.Error(t, err)
}

func TestStoreTokenProvider_HasTokenForAccount(t *testing.T) {
	store := memory.New()
	defer store.Stop()

	provider := NewStoreTokenProvider(store)

	ctx := context.Background()
	account := "test-user@example.com"

	assert.False(t, provider.HasTokenForAccount(account))

	token := &oauth2.Token{
		AccessToken:  "test-access-token",
		RefreshToken: "test-refresh-token",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}
	err := provider.SaveToken(ctx, account, token)
	require.NoError(t, err)

	assert.True(t, provider.HasTokenForAccount(account))
}

func TestTokenProviderInterfaces(t *testing.T) {
	var _ TokenProvider = (*FileTokenProvider)(nil)
	var _ TokenProvider = (*StoreTokenProvider)(nil)
}
