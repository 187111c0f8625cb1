// Package cmd implements the command-line interface for gtasks-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server to provide Google Tasks tools for AI assistants
//   - login: Run the OAuth consent flow and store a token for an account
//   - logout: Remove the stored token for an account
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
