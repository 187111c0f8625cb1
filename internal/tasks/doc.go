// Package tasks wraps the Google Tasks API behind a small Service interface
// and carries the domain rules shared by every tool: task list resolution,
// due date normalization, client-side search, and the error taxonomy.
package tasks
