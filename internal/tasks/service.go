package tasks

import "context"

// Service is the backend-agnostic surface the tool handlers call.
// The production implementation wraps the Google Tasks API; tests use an
// in-memory fake.
type Service interface {
	// ListTaskLists returns all task lists in API order.
	ListTaskLists(ctx context.Context) ([]TaskList, error)

	// CreateTaskList creates a new task list with the given title.
	CreateTaskList(ctx context.Context, title string) (*TaskList, error)

	// ListTasks enumerates tasks in a list.
	ListTasks(ctx context.Context, listID string, opts ListOptions) ([]Task, error)

	// GetTask fetches a single task by id.
	GetTask(ctx context.Context, listID, taskID string) (*Task, error)

	// InsertTask creates a task in the list.
	InsertTask(ctx context.Context, listID string, t NewTask) (*Task, error)

	// PatchTask applies a partial update; unset fields are preserved remotely.
	PatchTask(ctx context.Context, listID, taskID string, changes TaskChanges) (*Task, error)

	// DeleteTask permanently deletes a task.
	DeleteTask(ctx context.Context, listID, taskID string) error

	// MoveTask repositions or reparents a task. Empty parent/previous
	// means the corresponding parameter is not sent.
	MoveTask(ctx context.Context, listID, taskID, parent, previous string) (*Task, error)
}
