// Package server provides the shared MCP server state: a per-account cache
// of Google Tasks clients, health endpoints and the Prometheus metrics
// server for the HTTP transport, and Bearer-token session tracking so
// multiple accounts can share one server instance.
package server
