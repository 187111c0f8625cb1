package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/giantswarm/mcp-oauth/storage/memory"

	"github.com/teemow/gtasks-mcp/internal/google"
	"github.com/teemow/gtasks-mcp/internal/instrumentation"
	"github.com/teemow/gtasks-mcp/internal/server"
	"github.com/teemow/gtasks-mcp/internal/tools/common"
)

type sessionTestEnv struct {
	provider *google.StoreTokenProvider
	sessions *server.SessionIDManager
	instr    *instrumentation.Provider
	logger   *slog.Logger
}

func newSessionTestEnv(t *testing.T) *sessionTestEnv {
	t.Helper()

	store := memory.New()
	t.Cleanup(store.Stop)

	sessions := server.NewSessionIDManagerWithLogger(time.Minute, nil)
	t.Cleanup(sessions.Stop)

	instr, err := instrumentation.NewProvider(context.Background(), instrumentation.Config{})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	return &sessionTestEnv{
		provider: google.NewStoreTokenProvider(store),
		sessions: sessions,
		instr:    instr,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSessionMiddlewareAuthorizesAndStoresToken(t *testing.T) {
	env := newSessionTestEnv(t)
	ctx := context.Background()

	// A fresh store holds nothing for any account.
	if env.provider.HasTokenForAccount("default") {
		t.Fatal("fresh store should not have a token for the default account")
	}
	if _, err := env.provider.GetTokenForAccount(ctx, "default"); err == nil {
		t.Fatal("GetTokenForAccount() on a fresh store should error")
	}

	validations := 0
	validate := func(ctx context.Context, accessToken string) (string, error) {
		validations++
		if accessToken != "ya29.valid" {
			return "", errors.New("unexpected token")
		}
		return "user@example.com", nil
	}

	var gotAccount string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccount, _ = common.AccountFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := sessionMiddleware(env.sessions, env.provider, validate, env.logger, env.instr, next)

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer ya29.valid")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotAccount != "user@example.com" {
		t.Errorf("account in context = %q, want %q", gotAccount, "user@example.com")
	}
	if !env.provider.HasTokenForAccount("user@example.com") {
		t.Fatal("token was not stored for the validated account")
	}
	token, err := env.provider.GetTokenForAccount(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("GetTokenForAccount() error = %v", err)
	}
	if token.AccessToken != "ya29.valid" {
		t.Errorf("stored access token = %q, want %q", token.AccessToken, "ya29.valid")
	}

	// The stored token backs a Tasks service for the account.
	sc := server.NewServerContext(ctx, server.Options{
		TokenProvider: env.provider,
		Logger:        env.logger,
	})
	defer func() { _ = sc.Shutdown() }()

	svc, err := sc.TasksServiceForAccount(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("TasksServiceForAccount() error = %v", err)
	}
	if svc == nil {
		t.Fatal("TasksServiceForAccount() returned nil service")
	}

	// A repeat request reuses the session mapping without re-validating.
	handler.ServeHTTP(httptest.NewRecorder(), req.Clone(ctx))
	if validations != 1 {
		t.Errorf("validations = %d, want 1", validations)
	}
}

func TestSessionMiddlewareInvalidTokenFallsBack(t *testing.T) {
	env := newSessionTestEnv(t)

	validate := func(ctx context.Context, accessToken string) (string, error) {
		return "", errors.New("userinfo request failed with status 401")
	}

	var gotAccount string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccount, _ = common.AccountFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := sessionMiddleware(env.sessions, env.provider, validate, env.logger, env.instr, next)

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer ya29.revoked")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotAccount != "default" {
		t.Errorf("account in context = %q, want %q", gotAccount, "default")
	}
	if got := len(env.sessions.ListSessions()); got != 0 {
		t.Errorf("active sessions = %d, want 0", got)
	}
	if env.provider.HasTokenForAccount("default") {
		t.Error("no token should be stored for a rejected session")
	}
}

func TestSessionMiddlewareNoAuthorizationHeader(t *testing.T) {
	env := newSessionTestEnv(t)

	validate := func(ctx context.Context, accessToken string) (string, error) {
		t.Error("validator should not be called without a bearer token")
		return "", errors.New("unreachable")
	}

	var hadAccount bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAccount = common.AccountFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := sessionMiddleware(env.sessions, env.provider, validate, env.logger, env.instr, next)

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if hadAccount {
		t.Error("request without authorization should carry no account")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"standard", "Bearer abc123", "abc123", true},
		{"case insensitive scheme", "bearer abc123", "abc123", true},
		{"missing header", "", "", false},
		{"wrong scheme", "Basic abc123", "", false},
		{"empty token", "Bearer ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, ok := bearerToken(r)
			if got != tt.want || ok != tt.ok {
				t.Errorf("bearerToken() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}
