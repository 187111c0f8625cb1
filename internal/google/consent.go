package google

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	// consentCallbackTimeout bounds the wait for the browser redirect.
	consentCallbackTimeout = 5 * time.Minute

	// tokenExchangeTimeout bounds the code-for-token exchange.
	tokenExchangeTimeout = 30 * time.Second

	// consentStartPort is the first port tried for the callback listener.
	consentStartPort = 8085

	// consentMaxPortAttempts is how many consecutive ports are tried.
	consentMaxPortAttempts = 5
)

// RunConsentFlow runs the interactive OAuth browser consent flow with PKCE.
// It binds a local callback listener, prints the authorization URL to out,
// waits for the redirect, and exchanges the code for a token.
//
// The caller is responsible for persisting the returned token.
func RunConsentFlow(ctx context.Context, conf *oauth2.Config, out io.Writer) (*oauth2.Token, error) {
	port, listener, err := findAvailablePort()
	if err != nil {
		return nil, fmt.Errorf("could not bind a local port for the OAuth callback: %w", err)
	}
	defer listener.Close()

	// Work on a copy so the caller's config keeps its redirect URL.
	flowConf := *conf
	flowConf.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)

	verifier := oauth2.GenerateVerifier()

	authURL := flowConf.AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	fmt.Fprintln(out, "Open this URL in your browser:")
	fmt.Fprintln(out, authURL)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "No code in callback", http.StatusBadRequest)
			errCh <- fmt.Errorf("no code in callback")
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Authentication successful</h1><p>You may close this window.</p></body></html>")
		codeCh <- code
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	var code string
	select {
	case code = <-codeCh:
		// Got code
	case err := <-errCh:
		return nil, err
	case <-time.After(consentCallbackTimeout):
		return nil, fmt.Errorf("oauth callback timed out")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	exchangeCtx, cancelExchange := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancelExchange()

	token, err := flowConf.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	return token, nil
}

// Login runs the consent flow for the account and persists the token.
// Returns without a flow if a token already exists and still refreshes.
func Login(ctx context.Context, auth *Authenticator, account string, out io.Writer) error {
	cfg := auth.Config()

	if !cfg.HasCredentials() {
		return fmt.Errorf("%w\n\n%s", ErrNoClientConfig, CredentialsSetupInstructions(cfg))
	}

	if cfg.HasToken(account) && auth.tokenStillValid(ctx, account) {
		fmt.Fprintln(out, "already logged in")
		return nil
	}

	conf, err := auth.OAuthConfig()
	if err != nil {
		return err
	}

	token, err := RunConsentFlow(ctx, conf, out)
	if err != nil {
		return err
	}

	if err := auth.saveToken(account, token); err != nil {
		return err
	}

	fmt.Fprintln(out, "ok")
	return nil
}

// tokenStillValid checks whether the stored token for the account can still
// mint an access token, refreshing through Google if needed.
func (a *Authenticator) tokenStillValid(ctx context.Context, account string) bool {
	tok, err := a.loadTokenFile(account)
	if err != nil || tok.RefreshToken == "" {
		return false
	}

	conf, err := a.OAuthConfig()
	if err != nil {
		return false
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err = conf.TokenSource(checkCtx, tok).Token()
	return err == nil
}

// CredentialsSetupInstructions returns a human-readable description of how to
// obtain OAuth client credentials for the Google Tasks API.
func CredentialsSetupInstructions(cfg *Config) string {
	return fmt.Sprintf(`To authenticate with Google Tasks, you need OAuth credentials:

1. Go to https://console.cloud.google.com/apis/credentials
2. Create a project (or select an existing one)
3. Enable the Google Tasks API:
   https://console.cloud.google.com/apis/library/tasks.googleapis.com
4. Create OAuth 2.0 credentials:
   - Click 'Create Credentials' > 'OAuth client ID'
   - Choose 'Desktop app' as application type
   - Download the JSON file
5. Save it as:
   %s

Then run 'gtasks-mcp login' again.`, cfg.CredentialsPath())
}

// findAvailablePort tries to find an available port starting from consentStartPort.
func findAvailablePort() (int, net.Listener, error) {
	for i := 0; i < consentMaxPortAttempts; i++ {
		port := consentStartPort + i
		addr := fmt.Sprintf("localhost:%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			return port, listener, nil
		}
	}
	return 0, nil, fmt.Errorf("no available port found")
}
