package tasks

import "strings"

// SearchFilter narrows tasks by a text query and an optional due window. The
// window bounds are compared as raw RFC 3339 strings, which orders correctly
// for the UTC timestamps the Tasks API returns.
type SearchFilter struct {
	Query     string
	DueBefore string
	DueAfter  string
}

// Matches reports whether the task satisfies the filter. An empty query
// matches every task. Tasks without a due date are never excluded by the due
// window.
func (f SearchFilter) Matches(t Task) bool {
	if f.Query != "" {
		haystack := strings.ToLower(t.Title + " " + t.Notes)
		if !strings.Contains(haystack, strings.ToLower(f.Query)) {
			return false
		}
	}

	if t.Due != "" {
		if f.DueBefore != "" && t.Due > f.DueBefore {
			return false
		}
		if f.DueAfter != "" && t.Due < f.DueAfter {
			return false
		}
	}

	return true
}

// FilterTasks returns the tasks matching the filter, preserving order.
func FilterTasks(items []Task, f SearchFilter) []Task {
	matched := make([]Task, 0, len(items))
	for _, t := range items {
		if f.Matches(t) {
			matched = append(matched, t)
		}
	}
	return matched
}
