// Package testutil provides an in-memory fake of the Tasks service for use in
// handler and command tests.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/teemow/gtasks-mcp/internal/tasks"
)

// FakeService is an in-memory tasks.Service. Every method can be forced to
// fail by setting the corresponding error field. Safe for concurrent use.
type FakeService struct {
	mu sync.Mutex

	lists    []tasks.TaskList
	tasksMap map[string][]tasks.Task
	nextID   int

	ListTaskListsErr  error
	CreateTaskListErr error
	ListTasksErr      error
	GetTaskErr        error
	InsertTaskErr     error
	PatchTaskErr      error
	DeleteTaskErr     error
	MoveTaskErr       error
}

// NewFakeService returns an empty fake.
func NewFakeService() *FakeService {
	return &FakeService{
		tasksMap: make(map[string][]tasks.Task),
	}
}

// AddList registers a task list and returns it.
func (f *FakeService) AddList(id, title string) tasks.TaskList {
	f.mu.Lock()
	defer f.mu.Unlock()

	tl := tasks.TaskList{ID: id, Title: title}
	f.lists = append(f.lists, tl)
	if f.tasksMap[id] == nil {
		f.tasksMap[id] = []tasks.Task{}
	}
	return tl
}

// AddTask appends a task to a list and returns it.
func (f *FakeService) AddTask(listID string, t tasks.Task) tasks.Task {
	f.mu.Lock()
	defer f.mu.Unlock()

	if t.ID == "" {
		f.nextID++
		t.ID = fmt.Sprintf("task-%d", f.nextID)
	}
	if t.Status == "" {
		t.Status = tasks.StatusNeedsAction
	}
	f.tasksMap[listID] = append(f.tasksMap[listID], t)
	return t
}

// ListTaskLists implements tasks.Service.
func (f *FakeService) ListTaskLists(ctx context.Context) ([]tasks.TaskList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ListTaskListsErr != nil {
		return nil, f.ListTaskListsErr
	}
	out := make([]tasks.TaskList, len(f.lists))
	copy(out, f.lists)
	return out, nil
}

// CreateTaskList implements tasks.Service.
func (f *FakeService) CreateTaskList(ctx context.Context, title string) (*tasks.TaskList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateTaskListErr != nil {
		return nil, f.CreateTaskListErr
	}
	f.nextID++
	tl := tasks.TaskList{ID: fmt.Sprintf("list-%d", f.nextID), Title: title}
	f.lists = append(f.lists, tl)
	f.tasksMap[tl.ID] = []tasks.Task{}
	return &tl, nil
}

// ListTasks implements tasks.Service.
func (f *FakeService) ListTasks(ctx context.Context, listID string, opts tasks.ListOptions) ([]tasks.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = tasks.DefaultMaxResults
	}

	out := make([]tasks.Task, 0, len(f.tasksMap[listID]))
	for _, t := range f.tasksMap[listID] {
		if !opts.ShowCompleted && t.Status == tasks.StatusCompleted {
			continue
		}
		out = append(out, t)
		if int64(len(out)) >= maxResults {
			break
		}
	}
	return out, nil
}

// GetTask implements tasks.Service.
func (f *FakeService) GetTask(ctx context.Context, listID, taskID string) (*tasks.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.GetTaskErr != nil {
		return nil, f.GetTaskErr
	}
	for _, t := range f.tasksMap[listID] {
		if t.ID == taskID {
			found := t
			return &found, nil
		}
	}
	return nil, &tasks.RemoteError{StatusCode: 404, Op: "tasks.get", Err: fmt.Errorf("task %q not found", taskID)}
}

// InsertTask implements tasks.Service.
func (f *FakeService) InsertTask(ctx context.Context, listID string, nt tasks.NewTask) (*tasks.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.InsertTaskErr != nil {
		return nil, f.InsertTaskErr
	}
	f.nextID++
	t := tasks.Task{
		ID:     fmt.Sprintf("task-%d", f.nextID),
		Title:  nt.Title,
		Notes:  nt.Notes,
		Due:    nt.Due,
		Parent: nt.Parent,
		Status: tasks.StatusNeedsAction,
	}
	f.tasksMap[listID] = append(f.tasksMap[listID], t)
	return &t, nil
}

// PatchTask implements tasks.Service.
func (f *FakeService) PatchTask(ctx context.Context, listID, taskID string, changes tasks.TaskChanges) (*tasks.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PatchTaskErr != nil {
		return nil, f.PatchTaskErr
	}
	items := f.tasksMap[listID]
	for i := range items {
		if items[i].ID != taskID {
			continue
		}
		if changes.Title != nil {
			items[i].Title = *changes.Title
		}
		if changes.Notes != nil {
			items[i].Notes = *changes.Notes
		}
		if changes.Due != nil {
			items[i].Due = *changes.Due
		}
		if changes.Status != nil {
			items[i].Status = *changes.Status
		}
		found := items[i]
		return &found, nil
	}
	return nil, &tasks.RemoteError{StatusCode: 404, Op: "tasks.patch", Err: fmt.Errorf("task %q not found", taskID)}
}

// DeleteTask implements tasks.Service.
func (f *FakeService) DeleteTask(ctx context.Context, listID, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	items := f.tasksMap[listID]
	for i := range items {
		if items[i].ID == taskID {
			f.tasksMap[listID] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return &tasks.RemoteError{StatusCode: 404, Op: "tasks.delete", Err: fmt.Errorf("task %q not found", taskID)}
}

// MoveTask implements tasks.Service.
func (f *FakeService) MoveTask(ctx context.Context, listID, taskID, parent, previous string) (*tasks.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.MoveTaskErr != nil {
		return nil, f.MoveTaskErr
	}
	items := f.tasksMap[listID]
	for i := range items {
		if items[i].ID != taskID {
			continue
		}
		items[i].Parent = parent
		found := items[i]
		return &found, nil
	}
	return nil, &tasks.RemoteError{StatusCode: 404, Op: "tasks.move", Err: fmt.Errorf("task %q not found", taskID)}
}

// Tasks returns a copy of the stored tasks for a list.
func (f *FakeService) Tasks(listID string) []tasks.Task {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]tasks.Task, len(f.tasksMap[listID]))
	copy(out, f.tasksMap[listID])
	return out
}
