package tasks

// TaskList is the wire projection of a Google Tasks task list.
// Timestamps stay RFC 3339 strings so tool payloads pass the API
// representation through unchanged.
type TaskList struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Updated  string `json:"updated,omitempty"`
	SelfLink string `json:"self_link,omitempty"`
}

// Task is the wire projection of a Google Tasks task.
type Task struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"` // "needsAction" or "completed"
	Notes    string `json:"notes"`
	Due      string `json:"due,omitempty"`
	Updated  string `json:"updated,omitempty"`
	Position string `json:"position,omitempty"`
	Parent   string `json:"parent,omitempty"`
	Links    []Link `json:"links"`
}

// Link is a related link attached to a task.
type Link struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// Task status wire values.
const (
	StatusNeedsAction = "needsAction"
	StatusCompleted   = "completed"
)

// NewTask is the input for creating a task. Due must already be normalized
// to RFC 3339 (see NormalizeDue).
type NewTask struct {
	Title    string
	Notes    string
	Due      string
	Parent   string // parent task id for creating a subtask
	Previous string // sibling task id to insert after
}

// TaskChanges is a partial update. Nil fields are left untouched;
// non-nil fields are sent in the patch, including explicit empty values.
type TaskChanges struct {
	Title  *string
	Notes  *string
	Due    *string
	Status *string
}

// IsEmpty reports whether the patch carries no field changes.
func (c TaskChanges) IsEmpty() bool {
	return c.Title == nil && c.Notes == nil && c.Due == nil && c.Status == nil
}

// ListOptions controls task enumeration.
type ListOptions struct {
	MaxResults    int64
	ShowCompleted bool
	ShowDeleted   bool
}

// DefaultMaxResults is the task page size used when callers don't specify one.
const DefaultMaxResults int64 = 100
