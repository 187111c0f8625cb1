// Package tasks_tools implements the MCP tools for Google Tasks: listing and
// creating task lists, task CRUD, completion, reordering, and client-side
// search. Every handler resolves the task list reference per call and
// converts all failures into a uniform {"error": ...} envelope.
package tasks_tools
