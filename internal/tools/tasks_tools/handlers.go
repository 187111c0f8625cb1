package tasks_tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/gtasks-mcp/internal/logging"
	"github.com/teemow/gtasks-mcp/internal/server"
	"github.com/teemow/gtasks-mcp/internal/tasks"
	"github.com/teemow/gtasks-mcp/internal/tools/common"
)

const (
	authFailedMsg   = "Auth failed"
	authDetailedMsg = "Failed to authenticate with Google Tasks API. Please check your credentials."
)

func stringArg(args map[string]interface{}, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// optStringArg distinguishes an absent argument from an explicitly empty one.
func optStringArg(args map[string]interface{}, key string) *string {
	raw, exists := args[key]
	if !exists {
		return nil
	}
	if s, ok := raw.(string); ok {
		return &s
	}
	return nil
}

func boolArg(args map[string]interface{}, key string, fallback bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return fallback
}

// intArg reads a numeric argument. JSON numbers arrive as float64.
func intArg(args map[string]interface{}, key string, fallback int64) int64 {
	switch v := args[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return fallback
}

// getService resolves the account from the request and returns its Tasks
// service.
func getService(ctx context.Context, sc *server.ServerContext, args map[string]interface{}) (tasks.Service, string, error) {
	account := common.GetAccountFromArgs(ctx, args)
	svc, err := sc.TasksServiceForAccount(ctx, account)
	if err != nil {
		sc.Logger().LogAttrs(ctx, slog.LevelError, "failed to create Tasks service",
			logging.Account(account), logging.Err(err))
		return nil, account, err
	}
	return svc, account, nil
}

// resolveList resolves a task list reference, converting resolution failures
// into their error envelopes.
func resolveList(ctx context.Context, svc tasks.Service, ref string) (*tasks.Resolution, *mcp.CallToolResult) {
	res, err := tasks.ResolveTaskListID(ctx, svc, ref)
	if err == nil {
		return res, nil
	}

	if errors.Is(err, tasks.ErrNoLists) {
		return nil, errorResult("No task lists found.", map[string]any{
			"available_lists": []string{},
		})
	}

	var nferr *tasks.ListNotFoundError
	if errors.As(err, &nferr) {
		return nil, errorResult(fmt.Sprintf("Task list '%s' not found.", nferr.Requested), map[string]any{
			"available_lists": listIDs(nferr.Available),
		})
	}

	return nil, remoteErrorResult(err, nil)
}

// remoteErrorResult shapes a remote API failure. Status and message survive;
// stack traces and credential material do not.
func remoteErrorResult(err error, context map[string]any) *mcp.CallToolResult {
	var rerr *tasks.RemoteError
	if errors.As(err, &rerr) {
		return errorResult(fmt.Sprintf("Google Tasks API error: %v", rerr.Err), context)
	}
	return errorResult(err.Error(), context)
}

func handleListTaskLists(sc *server.ServerContext) common.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		svc, _, err := getService(ctx, sc, args)
		if err != nil {
			return errorResult(authDetailedMsg, map[string]any{"tasklists": []string{}}), nil
		}

		lists, err := svc.ListTaskLists(ctx)
		if err != nil {
			return remoteErrorResult(err, map[string]any{"tasklists": []string{}}), nil
		}

		if lists == nil {
			lists = []tasks.TaskList{}
		}
		return jsonResult(TaskListsResult{
			TotalLists: len(lists),
			TaskLists:  lists,
		}), nil
	}
}

func handleGetTasks(sc *server.ServerContext) common.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		listRef := stringArg(args, "tasklist_id", tasks.DefaultListAlias)
		maxResults := intArg(args, "max_results", tasks.DefaultMaxResults)
		showCompleted := boolArg(args, "show_completed", false)
		showDeleted := boolArg(args, "show_deleted", false)

		svc, _, err := getService(ctx, sc, args)
		if err != nil {
			return errorResult(authDetailedMsg, map[string]any{
				"tasklist_id": listRef,
				"tasks":       []string{},
			}), nil
		}

		res, err := tasks.ResolveTaskListID(ctx, svc, listRef)
		if err != nil {
			if errors.Is(err, tasks.ErrNoLists) {
				return errorResult("No task lists found in your Google Tasks account.", map[string]any{
					"tasklist_id": listRef,
					"tasks":       []string{},
				}), nil
			}
			var nferr *tasks.ListNotFoundError
			if errors.As(err, &nferr) {
				ids := listIDs(nferr.Available)
				return errorResult(fmt.Sprintf("Task list '%s' not found. Available lists: %v", listRef, ids), map[string]any{
					"tasklist_id":     listRef,
					"available_lists": ids,
					"tasks":           []string{},
				}), nil
			}
			return remoteErrorResult(err, map[string]any{
				"tasklist_id": listRef,
				"tasks":       []string{},
			}), nil
		}

		items, err := svc.ListTasks(ctx, res.ID, tasks.ListOptions{
			MaxResults:    maxResults,
			ShowCompleted: showCompleted,
			ShowDeleted:   showDeleted,
		})
		if err != nil {
			return remoteErrorResult(err, map[string]any{
				"tasklist_id": res.ID,
				"tasks":       []string{},
			}), nil
		}

		if items == nil {
			items = []tasks.Task{}
		}
		return jsonResult(TasksPage{
			TasklistID:     res.ID,
			MaxResults:     maxResults,
			ShowCompleted:  showCompleted,
			ShowDeleted:    showDeleted,
			TotalTasks:     len(items),
			Tasks:          items,
			AvailableLists: listIDs(res.Available),
		}), nil
	}
}

func handleGetTask(sc *server.ServerContext) common.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		taskID := stringArg(args, "task_id", "")
		if taskID == "" {
			return errorResult("task_id is required", nil), nil
		}

		svc, _, err := getService(ctx, sc, args)
		if err != nil {
			return errorResult(authFailedMsg, nil), nil
		}

		res, errResult := resolveList(ctx, svc, stringArg(args, "tasklist_id", tasks.DefaultListAlias))
		if errResult != nil {
			return errResult, nil
		}

		task, err := svc.GetTask(ctx, res.ID, taskID)
		if err != nil {
			return remoteErrorResult(err, nil), nil
		}

		return jsonResult(TaskResult{TasklistID: res.ID, Task: task}), nil
	}
}

func handleCreateTask(sc *server.ServerContext) common.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		title := stringArg(args, "title", "")
		if title == "" {
			return errorResult("title is required", nil), nil
		}
		due := stringArg(args, "due", "")
		if due == "" {
			return errorResult("due is required", nil), nil
		}

		// Validate the due date before touching the network.
		normalizedDue, err := tasks.NormalizeDue(due)
		if err != nil {
			return errorResult(err.Error(), nil), nil
		}

		svc, _, err := getService(ctx, sc, args)
		if err != nil {
			return errorResult(authFailedMsg, nil), nil
		}

		res, errResult := resolveList(ctx, svc, stringArg(args, "tasklist_id", tasks.DefaultListAlias))
		if errResult != nil {
			return errResult, nil
		}

		created, err := svc.InsertTask(ctx, res.ID, tasks.NewTask{
			Title:    title,
			Notes:    stringArg(args, "notes", ""),
			Due:      normalizedDue,
			Parent:   stringArg(args, "parent", ""),
			Previous: stringArg(args, "position", ""),
		})
		if err != nil {
			return remoteErrorResult(err, nil), nil
		}

		return jsonResult(TaskResult{TasklistID: res.ID, Task: created}), nil
	}
}

func handleUpdateTask(sc *server.ServerContext) common.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		taskID := stringArg(args, "task_id", "")
		if taskID == "" {
			return errorResult("task_id is required", nil), nil
		}

		svc, _, err := getService(ctx, sc, args)
		if err != nil {
			return errorResult(authFailedMsg, nil), nil
		}

		res, errResult := resolveList(ctx, svc, stringArg(args, "tasklist_id", tasks.DefaultListAlias))
		if errResult != nil {
			return errResult, nil
		}

		changes := tasks.TaskChanges{
			Title:  optStringArg(args, "title"),
			Notes:  optStringArg(args, "notes"),
			Due:    optStringArg(args, "due"),
			Status: optStringArg(args, "status"),
		}

		updated, err := svc.PatchTask(ctx, res.ID, taskID, changes)
		if err != nil {
			return remoteErrorResult(err, nil), nil
		}

		// Reparent or reposition in a second call. There is no transaction
		// across patch and move: if the move fails the patched fields stay
		// applied and only the move error is reported.
		parent := optStringArg(args, "parent")
		position := optStringArg(args, "position")
		if parent != nil || position != nil {
			var parentVal, positionVal string
			if parent != nil {
				parentVal = *parent
			}
			if position != nil {
				positionVal = *position
			}
			updated, err = svc.MoveTask(ctx, res.ID, taskID, parentVal, positionVal)
			if err != nil {
				return remoteErrorResult(err, nil), nil
			}
		}

		return jsonResult(TaskResult{TasklistID: res.ID, Task: updated}), nil
	}
}

func handleCompleteTask(sc *server.ServerContext) common.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		taskID := stringArg(args, "task_id", "")
		if taskID == "" {
			return errorResult("task_id is required", nil), nil
		}

		svc, _, err := getService(ctx, sc, args)
		if err != nil {
			return errorResult(authFailedMsg, nil), nil
		}

		res, errResult := resolveList(ctx, svc, stringArg(args, "tasklist_id", tasks.DefaultListAlias))
		if errResult != nil {
			return errResult, nil
		}

		status := tasks.StatusCompleted
		if !boolArg(args, "completed", true) {
			status = tasks.StatusNeedsAction
		}

		updated, err := svc.PatchTask(ctx, res.ID, taskID, tasks.TaskChanges{Status: &status})
		if err != nil {
			return remoteErrorResult(err, nil), nil
		}

		return jsonResult(TaskResult{TasklistID: res.ID, Task: updated}), nil
	}
}

func handleDeleteTask(sc *server.ServerContext) common.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		taskID := stringArg(args, "task_id", "")
		if taskID == "" {
			return errorResult("task_id is required", nil), nil
		}

		svc, _, err := getService(ctx, sc, args)
		if err != nil {
			return errorResult(authFailedMsg, nil), nil
		}

		res, errResult := resolveList(ctx, svc, stringArg(args, "tasklist_id", tasks.DefaultListAlias))
		if errResult != nil {
			return errResult, nil
		}

		if err := svc.DeleteTask(ctx, res.ID, taskID); err != nil {
			return remoteErrorResult(err, nil), nil
		}

		// The remote delete returns an empty body; echo the id back.
		return jsonResult(DeleteResult{
			TasklistID: res.ID,
			Deleted:    true,
			TaskID:     taskID,
		}), nil
	}
}

func handleMoveTask(sc *server.ServerContext) common.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		taskID := stringArg(args, "task_id", "")
		if taskID == "" {
			return errorResult("task_id is required", nil), nil
		}

		svc, _, err := getService(ctx, sc, args)
		if err != nil {
			return errorResult(authFailedMsg, nil), nil
		}

		res, errResult := resolveList(ctx, svc, stringArg(args, "tasklist_id", tasks.DefaultListAlias))
		if errResult != nil {
			return errResult, nil
		}

		moved, err := svc.MoveTask(ctx, res.ID, taskID,
			stringArg(args, "parent", ""),
			stringArg(args, "previous", ""))
		if err != nil {
			return remoteErrorResult(err, nil), nil
		}

		return jsonResult(TaskResult{TasklistID: res.ID, Task: moved}), nil
	}
}

func handleCreateTaskList(sc *server.ServerContext) common.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		title := stringArg(args, "title", "")
		if title == "" {
			return errorResult("title is required", nil), nil
		}

		svc, _, err := getService(ctx, sc, args)
		if err != nil {
			return errorResult(authFailedMsg, nil), nil
		}

		created, err := svc.CreateTaskList(ctx, title)
		if err != nil {
			return remoteErrorResult(err, nil), nil
		}

		return jsonResult(TaskListResult{TaskList: created}), nil
	}
}

func handleSearchTasks(sc *server.ServerContext) common.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		svc, _, err := getService(ctx, sc, args)
		if err != nil {
			return errorResult(authFailedMsg, nil), nil
		}

		res, errResult := resolveList(ctx, svc, stringArg(args, "tasklist_id", tasks.DefaultListAlias))
		if errResult != nil {
			return errResult, nil
		}

		items, err := svc.ListTasks(ctx, res.ID, tasks.ListOptions{
			MaxResults:    intArg(args, "max_results", tasks.DefaultMaxResults),
			ShowCompleted: boolArg(args, "include_completed", false),
			ShowDeleted:   boolArg(args, "include_deleted", false),
		})
		if err != nil {
			return remoteErrorResult(err, nil), nil
		}

		// Filtering happens in memory after the fetch: matches beyond the
		// first max_results fetched items cannot be found.
		matched := tasks.FilterTasks(items, tasks.SearchFilter{
			Query:     stringArg(args, "query", ""),
			DueBefore: stringArg(args, "due_before", ""),
			DueAfter:  stringArg(args, "due_after", ""),
		})

		return jsonResult(SearchResult{
			TasklistID: res.ID,
			Total:      len(matched),
			Tasks:      matched,
		}), nil
	}
}
