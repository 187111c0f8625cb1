package tasks_tools

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/gtasks-mcp/internal/tasks"
)

// TaskListsResult is the payload of list_tasklists.
type TaskListsResult struct {
	TotalLists int              `json:"total_lists"`
	TaskLists  []tasks.TaskList `json:"tasklists"`
}

// TasksPage is the payload of get_tasks.
type TasksPage struct {
	TasklistID     string       `json:"tasklist_id"`
	MaxResults     int64        `json:"max_results"`
	ShowCompleted  bool         `json:"show_completed"`
	ShowDeleted    bool         `json:"show_deleted"`
	TotalTasks     int          `json:"total_tasks"`
	Tasks          []tasks.Task `json:"tasks"`
	AvailableLists []string     `json:"available_lists"`
}

// TaskResult is the payload of the single-task operations.
type TaskResult struct {
	TasklistID string      `json:"tasklist_id"`
	Task       *tasks.Task `json:"task"`
}

// DeleteResult is the payload of delete_task. The remote delete response has
// no body, so the confirmation echoes the requested task id.
type DeleteResult struct {
	TasklistID string `json:"tasklist_id"`
	Deleted    bool   `json:"deleted"`
	TaskID     string `json:"task_id"`
}

// TaskListResult is the payload of create_tasklist.
type TaskListResult struct {
	TaskList *tasks.TaskList `json:"tasklist"`
}

// SearchResult is the payload of search_tasks.
type SearchResult struct {
	TasklistID string       `json:"tasklist_id"`
	Total      int          `json:"total"`
	Tasks      []tasks.Task `json:"tasks"`
}

// jsonResult marshals a success payload into a tool result.
func jsonResult(payload any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(data))
}

// errorResult marshals an error envelope. Every failure shares the shape
// {"error": <message>, ...context}; the result is flagged as an error so MCP
// clients can distinguish it, but the envelope itself is the payload.
func errorResult(msg string, context map[string]any) *mcp.CallToolResult {
	envelope := map[string]any{"error": msg}
	for k, v := range context {
		envelope[k] = v
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(msg)
	}

	result := mcp.NewToolResultText(string(data))
	result.IsError = true
	return result
}

// listIDs projects task lists to their ids for available_lists context
// fields.
func listIDs(lists []tasks.TaskList) []string {
	ids := make([]string, 0, len(lists))
	for _, tl := range lists {
		ids = append(ids, tl.ID)
	}
	return ids
}
