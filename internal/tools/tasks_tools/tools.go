package tasks_tools

import (
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/gtasks-mcp/internal/instrumentation"
	"github.com/teemow/gtasks-mcp/internal/server"
	"github.com/teemow/gtasks-mcp/internal/tools/common"
)

// accountOption is the account selector shared by every tool.
func accountOption() mcp.ToolOption {
	return mcp.WithString("account",
		mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
	)
}

func tasklistOption() mcp.ToolOption {
	return mcp.WithString("tasklist_id",
		mcp.Description("ID of the task list (default: '@default' uses the first list)"),
	)
}

// RegisterTasksTools registers all Google Tasks tools with the MCP server.
// When readOnly is set, mutating tools are not registered at all.
func RegisterTasksTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registerReadTools(s, sc)
	if !readOnly {
		registerWriteTools(s, sc)
	}
	return nil
}

func registerReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	listTaskListsTool := mcp.NewTool("list_tasklists",
		mcp.WithDescription("List all available task lists from Google Tasks. Use this to discover available task lists before creating or querying tasks."),
		accountOption(),
	)
	s.AddTool(listTaskListsTool, common.InstrumentedToolHandlerWithService(
		"list_tasklists", instrumentation.ServiceTasks, instrumentation.OperationList, sc,
		handleListTaskLists(sc)))

	getTasksTool := mcp.NewTool("get_tasks",
		mcp.WithDescription("Get tasks from a Google Tasks list."),
		accountOption(),
		tasklistOption(),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of tasks to return (default: 100)"),
		),
		mcp.WithBoolean("show_completed",
			mcp.Description("Whether to include completed tasks (default: false)"),
		),
		mcp.WithBoolean("show_deleted",
			mcp.Description("Whether to include deleted tasks (default: false)"),
		),
	)
	s.AddTool(getTasksTool, common.InstrumentedToolHandlerWithService(
		"get_tasks", instrumentation.ServiceTasks, instrumentation.OperationList, sc,
		handleGetTasks(sc)))

	getTaskTool := mcp.NewTool("get_task",
		mcp.WithDescription("Fetch detailed information about a single task by its ID."),
		accountOption(),
		tasklistOption(),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to retrieve"),
		),
	)
	s.AddTool(getTaskTool, common.InstrumentedToolHandlerWithService(
		"get_task", instrumentation.ServiceTasks, instrumentation.OperationGet, sc,
		handleGetTask(sc)))

	searchTasksTool := mcp.NewTool("search_tasks",
		mcp.WithDescription("Search and filter tasks by text, completion status, and due date ranges. Filtering is applied client-side after fetching up to max_results tasks."),
		accountOption(),
		tasklistOption(),
		mcp.WithString("query",
			mcp.Description("Text to search for in task titles and notes (case-insensitive)"),
		),
		mcp.WithBoolean("include_completed",
			mcp.Description("Whether to include completed tasks (default: false)"),
		),
		mcp.WithBoolean("include_deleted",
			mcp.Description("Whether to include deleted tasks (default: false)"),
		),
		mcp.WithString("due_before",
			mcp.Description("Only return tasks due before this date (RFC 3339 format)"),
		),
		mcp.WithString("due_after",
			mcp.Description("Only return tasks due after this date (RFC 3339 format)"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of tasks to retrieve before filtering (default: 100)"),
		),
	)
	s.AddTool(searchTasksTool, common.InstrumentedToolHandlerWithService(
		"search_tasks", instrumentation.ServiceTasks, instrumentation.OperationSearch, sc,
		handleSearchTasks(sc)))
}

func registerWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	createTaskTool := mcp.NewTool("create_task",
		mcp.WithDescription("Create a new task in Google Tasks with a due date. Google Tasks supports due dates only, not times; put times in the title or notes."),
		accountOption(),
		tasklistOption(),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("The title/name of the task"),
		),
		mcp.WithString("due",
			mcp.Required(),
			mcp.Description("Due date in YYYY-MM-DD format (e.g., '2024-12-31')"),
		),
		mcp.WithString("notes",
			mcp.Description("Optional description or notes for the task"),
		),
		mcp.WithString("parent",
			mcp.Description("Optional parent task ID to create a subtask"),
		),
		mcp.WithString("position",
			mcp.Description("Optional ID of the task to insert after (for ordering)"),
		),
	)
	s.AddTool(createTaskTool, common.InstrumentedToolHandlerWithService(
		"create_task", instrumentation.ServiceTasks, instrumentation.OperationCreate, sc,
		handleCreateTask(sc)))

	updateTaskTool := mcp.NewTool("update_task",
		mcp.WithDescription("Update one or more fields of an existing task. Only the fields you provide are updated; all other fields remain unchanged."),
		accountOption(),
		tasklistOption(),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to update"),
		),
		mcp.WithString("title",
			mcp.Description("New title for the task"),
		),
		mcp.WithString("notes",
			mcp.Description("New description/notes for the task"),
		),
		mcp.WithString("due",
			mcp.Description("New due date in RFC 3339 format (e.g., '2024-12-31T23:59:59Z')"),
		),
		mcp.WithString("status",
			mcp.Description("New status - either 'needsAction' or 'completed'"),
		),
		mcp.WithString("parent",
			mcp.Description("New parent task ID to move this task under (makes it a subtask)"),
		),
		mcp.WithString("position",
			mcp.Description("ID of task to position this task after (for reordering)"),
		),
	)
	s.AddTool(updateTaskTool, common.InstrumentedToolHandlerWithService(
		"update_task", instrumentation.ServiceTasks, instrumentation.OperationUpdate, sc,
		handleUpdateTask(sc)))

	completeTaskTool := mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a task as completed or reopen it. When completing, Google Tasks sets the completion timestamp automatically."),
		accountOption(),
		tasklistOption(),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to update"),
		),
		mcp.WithBoolean("completed",
			mcp.Description("True to mark completed, false to mark as needs action (default: true)"),
		),
	)
	s.AddTool(completeTaskTool, common.InstrumentedToolHandlerWithService(
		"complete_task", instrumentation.ServiceTasks, instrumentation.OperationComplete, sc,
		handleCompleteTask(sc)))

	deleteTaskTool := mcp.NewTool("delete_task",
		mcp.WithDescription("Permanently delete a task from Google Tasks. This cannot be undone; use complete_task to keep the task but mark it done."),
		accountOption(),
		tasklistOption(),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to delete"),
		),
	)
	s.AddTool(deleteTaskTool, common.InstrumentedToolHandlerWithService(
		"delete_task", instrumentation.ServiceTasks, instrumentation.OperationDelete, sc,
		handleDeleteTask(sc)))

	moveTaskTool := mcp.NewTool("move_task",
		mcp.WithDescription("Move a task to change its position or parent within a task list."),
		accountOption(),
		tasklistOption(),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to move"),
		),
		mcp.WithString("parent",
			mcp.Description("ID of the parent task to move this under (creates subtask relationship)"),
		),
		mcp.WithString("previous",
			mcp.Description("ID of the task that should come before this task (for ordering)"),
		),
	)
	s.AddTool(moveTaskTool, common.InstrumentedToolHandlerWithService(
		"move_task", instrumentation.ServiceTasks, instrumentation.OperationMove, sc,
		handleMoveTask(sc)))

	createTaskListTool := mcp.NewTool("create_tasklist",
		mcp.WithDescription("Create a new task list in Google Tasks. Task lists are top-level containers for organizing tasks (e.g., 'Work', 'Personal')."),
		accountOption(),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("The name/title for the new task list"),
		),
	)
	s.AddTool(createTaskListTool, common.InstrumentedToolHandlerWithService(
		"create_tasklist", instrumentation.ServiceTasks, instrumentation.OperationCreate, sc,
		handleCreateTaskList(sc)))
}
