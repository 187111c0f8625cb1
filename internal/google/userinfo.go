package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// userinfoEndpoint is Google's OAuth2 userinfo endpoint, used to validate
// access tokens forwarded by HTTP transport clients.
const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// TokenValidator resolves a Google access token to the email address of the
// account it was issued for. An error means the token is invalid or could
// not be verified.
type TokenValidator func(ctx context.Context, accessToken string) (email string, err error)

// UserInfoClient validates access tokens against Google's userinfo endpoint.
type UserInfoClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewUserInfoClient creates a client for Google's userinfo endpoint.
func NewUserInfoClient() *UserInfoClient {
	return &UserInfoClient{
		endpoint:   userinfoEndpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ValidateAccessToken checks the token with Google and returns the email of
// the account it belongs to.
func (c *UserInfoClient) ValidateAccessToken(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.Email == "" {
		return "", fmt.Errorf("userinfo response contains no email")
	}

	return info.Email, nil
}
