package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/gtasks-mcp/internal/google"
	"github.com/teemow/gtasks-mcp/internal/instrumentation"
	"github.com/teemow/gtasks-mcp/internal/tasks"
)

// Options configures a ServerContext.
type Options struct {
	// Auth resolves credentials from the local config directory. Used by
	// the stdio transport.
	Auth *google.Authenticator

	// TokenProvider, when set, overrides Auth as the token source. The
	// HTTP transport uses this with a token store.
	TokenProvider google.TokenProvider

	// ReadOnly disables all mutating tools.
	ReadOnly bool

	Logger      *slog.Logger
	Metrics     *instrumentation.Metrics
	AuditLogger *instrumentation.AuditLogger
}

// ServerContext holds the shared state for the MCP server: the lifecycle
// context and a per-account cache of Tasks clients, created lazily on first
// use.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	auth          *google.Authenticator
	tokenProvider google.TokenProvider
	services      map[string]tasks.Service
	readOnly      bool
	logger        *slog.Logger
	metrics       *instrumentation.Metrics
	auditLogger   *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context.
func NewServerContext(ctx context.Context, opts Options) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ServerContext{
		ctx:           shutdownCtx,
		cancel:        cancel,
		auth:          opts.Auth,
		tokenProvider: opts.TokenProvider,
		services:      make(map[string]tasks.Service),
		readOnly:      opts.ReadOnly,
		logger:        logger,
		metrics:       opts.Metrics,
		auditLogger:   opts.AuditLogger,
	}
}

// Context returns the server lifecycle context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// ReadOnly reports whether mutating tools are disabled.
func (sc *ServerContext) ReadOnly() bool {
	return sc.readOnly
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder, which may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, which may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// TasksServiceForAccount returns the Tasks service for an account, creating
// and caching it on first use.
func (sc *ServerContext) TasksServiceForAccount(ctx context.Context, account string) (tasks.Service, error) {
	if account == "" {
		account = "default"
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if svc, ok := sc.services[account]; ok {
		return svc, nil
	}

	svc, err := sc.newService(ctx, account)
	if err != nil {
		return nil, err
	}

	sc.services[account] = svc
	return svc, nil
}

// TasksService returns the Tasks service for the default account.
func (sc *ServerContext) TasksService(ctx context.Context) (tasks.Service, error) {
	return sc.TasksServiceForAccount(ctx, "default")
}

// SetTasksServiceForAccount replaces the cached service for an account.
// Used by tests to inject fakes.
func (sc *ServerContext) SetTasksServiceForAccount(account string, svc tasks.Service) {
	if account == "" {
		account = "default"
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.services[account] = svc
}

// newService builds a Tasks client for the account. The token provider takes
// precedence over the file-backed authenticator. Callers hold sc.mu.
func (sc *ServerContext) newService(ctx context.Context, account string) (tasks.Service, error) {
	var client *tasks.Client
	var err error

	switch {
	case sc.tokenProvider != nil && sc.tokenProvider.HasTokenForAccount(account):
		ts := &providerTokenSource{ctx: sc.ctx, provider: sc.tokenProvider, account: account}
		client, err = tasks.NewClientWithHTTPClient(sc.ctx, oauth2.NewClient(sc.ctx, ts), account)
	case sc.auth != nil:
		client, err = tasks.NewClientForAccount(ctx, sc.auth, account)
	default:
		return nil, fmt.Errorf("no credential source configured")
	}
	if err != nil {
		return nil, err
	}

	client.SetMetrics(sc.metrics)
	return client, nil
}

// providerTokenSource adapts a google.TokenProvider to oauth2.TokenSource so
// the Tasks client re-fetches the token on each request batch.
type providerTokenSource struct {
	ctx      context.Context
	provider google.TokenProvider
	account  string
}

func (s *providerTokenSource) Token() (*oauth2.Token, error) {
	return s.provider.GetTokenForAccount(s.ctx, s.account)
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the lifecycle context and marks the server as stopped.
// Safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
