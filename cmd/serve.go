package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-oauth/storage/memory"

	"github.com/teemow/gtasks-mcp/internal/google"
	"github.com/teemow/gtasks-mcp/internal/instrumentation"
	"github.com/teemow/gtasks-mcp/internal/logging"
	"github.com/teemow/gtasks-mcp/internal/server"
	"github.com/teemow/gtasks-mcp/internal/tools/common"
	"github.com/teemow/gtasks-mcp/internal/tools/tasks_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		transport      string
		httpAddr       string
		readOnly       bool
		configDir      string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Google Tasks
tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Safety Mode:
  Use --read-only to register only the read tools (list, get, search).
  Write tools (create, update, complete, delete, move) are registered by
  default.

Credentials:
  Tokens and OAuth client credentials are read from the config directory
  (default: ~/.config/gtasks-mcp). Run 'gtasks-mcp login' first to
  authorize an account, or set GOOGLE_TASKS_TOKEN for a pre-issued access
  token.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}
			return runServe(transport, debugMode, httpAddr, readOnly, configDir, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Register only read tools; disable task mutation tools")
	cmd.Flags().StringVar(&configDir, "config-dir", "", "Directory for OAuth credentials and tokens (default: ~/.config/gtasks-mcp)")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(transport string, debugMode bool, httpAddr string, readOnly bool, configDir string, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := setupLogger(debugMode)

	// Load metrics config from environment if not set via flags
	if !metricsConfig.Enabled && os.Getenv("METRICS_ENABLED") == "true" {
		metricsConfig.Enabled = true
	}
	if metricsConfig.Addr == "" || metricsConfig.Addr == server.DefaultMetricsAddr {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsConfig.Addr = addr
		}
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if transport != "stdio" {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if transport != "stdio" && metricsConfig.Enabled && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			log.Printf("Metrics server started on %s", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	// Set up Google credentials. Consent flows need a terminal, so they are
	// only allowed on the stdio transport.
	googleConfig := google.NewConfig(configDir)
	auth := google.NewAuthenticator(googleConfig)
	auth.AllowConsent = transport == "stdio"
	auth.SetLogger(logger)
	if provider.Enabled() {
		auth.SetMetrics(provider.Metrics())
	}

	// Create server context (recreated for HTTP with an OAuth token provider).
	// The file provider serves accounts that already have a stored token; the
	// authenticator remains the fallback for consent flows.
	contextOpts := server.Options{
		Auth:          auth,
		TokenProvider: google.NewFileTokenProvider(auth),
		ReadOnly:      readOnly,
		Logger:        logger,
	}
	if provider.Enabled() {
		contextOpts.Metrics = provider.Metrics()
		contextOpts.AuditLogger = instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging)
	}
	serverContext := server.NewServerContext(shutdownCtx, contextOpts)

	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if transport != "stdio" {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("gtasks-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	// Log the mode for visibility (only for non-stdio transports)
	if transport != "stdio" {
		if readOnly {
			log.Println("Starting server in READ-ONLY mode (task mutation tools disabled)")
		} else {
			log.Println("Starting server with write operations enabled (use --read-only to disable)")
		}
	}

	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	// Start the appropriate server based on transport type
	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		fmt.Printf("Starting gtasks-mcp server with %s transport...\n", transport)
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, httpAddr, readOnly, auth, logger, provider, instrConfig)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

// setupLogger configures the default slog logger. Logs go to stderr so the
// stdio transport keeps stdout clean for MCP messages.
func setupLogger(debugMode bool) *slog.Logger {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// registerAllTools registers all MCP tools
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext, readOnly bool) error {
	if err := tasks_tools.RegisterTasksTools(mcpSrv, ctx, readOnly); err != nil {
		return fmt.Errorf("failed to register Tasks tools: %w", err)
	}
	return nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, oldServerContext *server.ServerContext, addr string, readOnly bool, auth *google.Authenticator, logger *slog.Logger, instrProvider *instrumentation.Provider, instrConfig instrumentation.Config) error {
	// Tokens acquired over HTTP live in an in-memory store keyed by account.
	// File tokens from 'gtasks-mcp login' remain available as a fallback.
	store := memory.New()
	defer store.Stop()
	tokenProvider := google.NewStoreTokenProvider(store)

	// Recreate server context with the OAuth token provider
	if err := oldServerContext.Shutdown(); err != nil {
		log.Printf("Warning: failed to shutdown old server context: %v", err)
	}

	contextOpts := server.Options{
		Auth:          auth,
		TokenProvider: tokenProvider,
		ReadOnly:      readOnly,
		Logger:        logger,
	}
	if instrProvider.Enabled() {
		contextOpts.Metrics = instrProvider.Metrics()
		contextOpts.AuditLogger = instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging)
	}
	serverContext := server.NewServerContext(ctx, contextOpts)
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			log.Printf("Error during server context shutdown: %v", err)
		}
	}()

	// Re-register all tools with the new context
	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	// Session manager maps bearer tokens to accounts
	sessions := server.NewSessionIDManagerWithLogger(server.DefaultSessionTimeout, logger)
	defer sessions.Stop()
	if instrProvider.Enabled() {
		metrics := instrProvider.Metrics()
		sessions.SetSessionGauge(func(delta int64) {
			if delta > 0 {
				metrics.IncrementActiveSessions(ctx)
			} else {
				metrics.DecrementActiveSessions(ctx)
			}
		})
	}

	streamableServer := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath("/mcp"),
	)

	mux := http.NewServeMux()
	validator := google.NewUserInfoClient()
	mux.Handle("/mcp", sessionMiddleware(sessions, tokenProvider, validator.ValidateAccessToken, logger, instrProvider, streamableServer))

	healthChecker := server.NewHealthChecker(serverContext)
	healthChecker.RegisterHealthEndpoints(mux)
	healthChecker.SetReady(true)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		// No WriteTimeout: streamed MCP responses can stay open indefinitely.
	}

	fmt.Printf("Streamable HTTP server starting on %s\n", addr)
	fmt.Printf("  MCP endpoint: /mcp\n")
	fmt.Printf("  Health endpoints: /healthz, /readyz\n")

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		fmt.Println("HTTP server stopped normally")
	}

	fmt.Println("HTTP server gracefully stopped")
	return nil
}

const (
	// forwardedTokenExpiry bounds how long a stored access token is trusted
	// before the session has to present it again.
	forwardedTokenExpiry = 1 * time.Hour

	// tokenStoreTimeout limits how long a token store write may block a request.
	tokenStoreTimeout = 5 * time.Second
)

// sessionMiddleware resolves the session from the Authorization header and
// injects the mapped Google account into the request context. Sessions seen
// for the first time have their bearer token validated against Google's
// userinfo endpoint and stored for API use, keyed by the account email.
// Requests without a valid bearer token fall through to the default account.
func sessionMiddleware(sessions *server.SessionIDManager, tokens *google.StoreTokenProvider, validate google.TokenValidator, logger *slog.Logger, instrProvider *instrumentation.Provider, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if sessionID, err := sessions.ResolveSessionID(r); err == nil {
			account, known := sessions.GetAccountForSession(sessionID)
			if !known {
				account = authorizeSession(r, sessionID, sessions, tokens, validate, logger)
			}
			r = r.WithContext(common.ContextWithAccount(r.Context(), account))
		}

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		if instrProvider.Enabled() {
			instrProvider.Metrics().RecordHTTPRequest(r.Context(), r.Method, "/mcp", recorder.status, time.Since(start))
		}
	})
}

// authorizeSession validates a first-seen session's bearer token and saves
// it in the token store under the account email so the Tasks client can use
// it for Google API calls. Returns the account the session maps to.
func authorizeSession(r *http.Request, sessionID string, sessions *server.SessionIDManager, tokens *google.StoreTokenProvider, validate google.TokenValidator, logger *slog.Logger) string {
	accessToken, ok := bearerToken(r)
	if !ok {
		return "default"
	}

	email, err := validate(r.Context(), accessToken)
	if err != nil {
		logger.Warn("Bearer token validation failed, falling back to default account", logging.Err(err))
		sessions.RemoveSession(sessionID)
		return "default"
	}

	token := &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(forwardedTokenExpiry),
	}

	storeCtx, cancel := context.WithTimeout(r.Context(), tokenStoreTimeout)
	defer cancel()
	if err := tokens.SaveToken(storeCtx, email, token); err != nil {
		// The session still maps to the account; API calls surface the
		// missing token as an auth error.
		logger.Warn("Failed to store token for session", logging.UserHash(email), logging.Err(err))
	}

	sessions.SetAccountForSession(sessionID, email)
	logger.Info("Session authorized", logging.UserHash(email))
	return email
}

// bearerToken extracts the bearer token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// statusRecorder captures the response status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush passes through to the underlying writer so streamed responses are
// not buffered behind the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
