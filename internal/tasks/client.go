package tasks

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/option"
	tasksapi "google.golang.org/api/tasks/v1"

	"github.com/teemow/gtasks-mcp/internal/google"
	"github.com/teemow/gtasks-mcp/internal/instrumentation"
)

// APITimeout bounds each individual Google Tasks API call.
const APITimeout = 30 * time.Second

// Client implements Service on the Google Tasks API.
type Client struct {
	svc     *tasksapi.Service
	account string
	metrics *instrumentation.Metrics
}

// NewClientForAccount creates a Tasks client authenticated for the account.
func NewClientForAccount(ctx context.Context, auth *google.Authenticator, account string) (*Client, error) {
	httpClient, err := auth.HTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	return NewClientWithHTTPClient(ctx, httpClient, account)
}

// NewClientWithHTTPClient creates a client over a pre-authenticated HTTP
// client. Used by the HTTP transport (token store) and by tests.
func NewClientWithHTTPClient(ctx context.Context, httpClient *http.Client, account string) (*Client, error) {
	svc, err := tasksapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Tasks service: %w", err)
	}

	return &Client{
		svc:     svc,
		account: account,
	}, nil
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// SetMetrics sets the recorder for Google API operation metrics.
func (c *Client) SetMetrics(m *instrumentation.Metrics) {
	c.metrics = m
}

// record emits the API operation metric when a recorder is configured.
func (c *Client) record(ctx context.Context, op string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceTasks, op, status, time.Since(start))
}

// ListTaskLists implements Service.
func (c *Client) ListTaskLists(ctx context.Context) ([]TaskList, error) {
	callCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	start := time.Now()
	result, err := c.svc.Tasklists.List().Context(callCtx).Do()
	c.record(ctx, instrumentation.OperationList, start, err)
	if err != nil {
		return nil, wrapRemoteError("tasklists.list", err)
	}

	lists := make([]TaskList, 0, len(result.Items))
	for _, tl := range result.Items {
		lists = append(lists, toTaskList(tl))
	}

	return lists, nil
}

// CreateTaskList implements Service.
func (c *Client) CreateTaskList(ctx context.Context, title string) (*TaskList, error) {
	callCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	start := time.Now()
	created, err := c.svc.Tasklists.Insert(&tasksapi.TaskList{Title: title}).Context(callCtx).Do()
	c.record(ctx, instrumentation.OperationCreate, start, err)
	if err != nil {
		return nil, wrapRemoteError("tasklists.insert", err)
	}

	result := toTaskList(created)
	return &result, nil
}

// ListTasks implements Service.
func (c *Client) ListTasks(ctx context.Context, listID string, opts ListOptions) ([]Task, error) {
	callCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	call := c.svc.Tasks.List(listID).
		MaxResults(maxResults).
		ShowCompleted(opts.ShowCompleted).
		ShowDeleted(opts.ShowDeleted)

	start := time.Now()
	result, err := call.Context(callCtx).Do()
	c.record(ctx, instrumentation.OperationList, start, err)
	if err != nil {
		return nil, wrapRemoteError("tasks.list", err)
	}

	items := make([]Task, 0, len(result.Items))
	for _, t := range result.Items {
		items = append(items, toTask(t))
	}

	return items, nil
}

// GetTask implements Service.
func (c *Client) GetTask(ctx context.Context, listID, taskID string) (*Task, error) {
	callCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	start := time.Now()
	t, err := c.svc.Tasks.Get(listID, taskID).Context(callCtx).Do()
	c.record(ctx, instrumentation.OperationGet, start, err)
	if err != nil {
		return nil, wrapRemoteError("tasks.get", err)
	}

	result := toTask(t)
	return &result, nil
}

// InsertTask implements Service.
func (c *Client) InsertTask(ctx context.Context, listID string, nt NewTask) (*Task, error) {
	callCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	body := &tasksapi.Task{
		Title: nt.Title,
		Notes: nt.Notes,
		Due:   nt.Due,
	}

	call := c.svc.Tasks.Insert(listID, body)
	if nt.Parent != "" {
		call = call.Parent(nt.Parent)
	}
	if nt.Previous != "" {
		call = call.Previous(nt.Previous)
	}

	start := time.Now()
	created, err := call.Context(callCtx).Do()
	c.record(ctx, instrumentation.OperationCreate, start, err)
	if err != nil {
		return nil, wrapRemoteError("tasks.insert", err)
	}

	result := toTask(created)
	return &result, nil
}

// PatchTask implements Service. Only the fields set in changes are sent;
// explicit empty values are force-sent so they clear the remote field.
func (c *Client) PatchTask(ctx context.Context, listID, taskID string, changes TaskChanges) (*Task, error) {
	callCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	body := &tasksapi.Task{}
	if changes.Title != nil {
		body.Title = *changes.Title
		body.ForceSendFields = append(body.ForceSendFields, "Title")
	}
	if changes.Notes != nil {
		body.Notes = *changes.Notes
		body.ForceSendFields = append(body.ForceSendFields, "Notes")
	}
	if changes.Due != nil {
		body.Due = *changes.Due
		body.ForceSendFields = append(body.ForceSendFields, "Due")
	}
	if changes.Status != nil {
		body.Status = *changes.Status
		body.ForceSendFields = append(body.ForceSendFields, "Status")
	}

	start := time.Now()
	updated, err := c.svc.Tasks.Patch(listID, taskID, body).Context(callCtx).Do()
	c.record(ctx, instrumentation.OperationUpdate, start, err)
	if err != nil {
		return nil, wrapRemoteError("tasks.patch", err)
	}

	result := toTask(updated)
	return &result, nil
}

// DeleteTask implements Service.
func (c *Client) DeleteTask(ctx context.Context, listID, taskID string) error {
	callCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	start := time.Now()
	err := c.svc.Tasks.Delete(listID, taskID).Context(callCtx).Do()
	c.record(ctx, instrumentation.OperationDelete, start, err)
	if err != nil {
		return wrapRemoteError("tasks.delete", err)
	}

	return nil
}

// MoveTask implements Service.
func (c *Client) MoveTask(ctx context.Context, listID, taskID, parent, previous string) (*Task, error) {
	callCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	call := c.svc.Tasks.Move(listID, taskID)
	if parent != "" {
		call = call.Parent(parent)
	}
	if previous != "" {
		call = call.Previous(previous)
	}

	start := time.Now()
	moved, err := call.Context(callCtx).Do()
	c.record(ctx, instrumentation.OperationMove, start, err)
	if err != nil {
		return nil, wrapRemoteError("tasks.move", err)
	}

	result := toTask(moved)
	return &result, nil
}

// toTaskList converts an API task list to the wire projection.
func toTaskList(tl *tasksapi.TaskList) TaskList {
	if tl == nil {
		return TaskList{}
	}
	return TaskList{
		ID:       tl.Id,
		Title:    tl.Title,
		Updated:  tl.Updated,
		SelfLink: tl.SelfLink,
	}
}

// toTask converts an API task to the wire projection.
func toTask(t *tasksapi.Task) Task {
	if t == nil {
		return Task{}
	}

	result := Task{
		ID:       t.Id,
		Title:    t.Title,
		Notes:    t.Notes,
		Status:   t.Status,
		Due:      t.Due,
		Updated:  t.Updated,
		Position: t.Position,
		Parent:   t.Parent,
	}

	if result.Status == "" {
		result.Status = StatusNeedsAction
	}

	if t.Links != nil {
		result.Links = make([]Link, len(t.Links))
		for i, link := range t.Links {
			result.Links[i] = Link{
				Type:        link.Type,
				Description: link.Description,
				Link:        link.Link,
			}
		}
	}

	return result
}
