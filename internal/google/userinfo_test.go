package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserInfoClient(srv *httptest.Server) *UserInfoClient {
	return &UserInfoClient{
		endpoint:   srv.URL,
		httpClient: srv.Client(),
	}
}

func TestUserInfoClientValidateAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"user@example.com","verified_email":true}`))
	}))
	defer srv.Close()

	client := newTestUserInfoClient(srv)

	email, err := client.ValidateAccessToken(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)
}

func TestUserInfoClientValidateAccessTokenRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestUserInfoClient(srv)

	_, err := client.ValidateAccessToken(context.Background(), "bad-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestUserInfoClientValidateAccessTokenMissingEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"verified_email":true}`))
	}))
	defer srv.Close()

	client := newTestUserInfoClient(srv)

	_, err := client.ValidateAccessToken(context.Background(), "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no email")
}
