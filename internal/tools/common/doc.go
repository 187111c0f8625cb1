// Package common provides shared utilities for MCP tool implementations:
// account resolution for multi-account support and instrumentation wrappers
// applied to every registered tool handler.
package common
