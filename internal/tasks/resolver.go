package tasks

import "context"

// DefaultListAlias is the caller-facing alias for the user's first task list.
const DefaultListAlias = "@default"

// Resolution is the outcome of resolving a task list reference. Available is
// populated only when the resolver had to enumerate the user's lists, so
// callers can surface the valid choices in error payloads.
type Resolution struct {
	ID        string
	Available []TaskList
}

// ResolveTaskListID maps a task list reference to a concrete list ID. The
// alias "@default" (or an empty reference) resolves to the user's first list,
// enumerated fresh on every call. A non-empty ID is verified against the
// user's lists and rejected with a ListNotFoundError when absent.
func ResolveTaskListID(ctx context.Context, svc Service, ref string) (*Resolution, error) {
	lists, err := svc.ListTaskLists(ctx)
	if err != nil {
		return nil, err
	}

	if ref == "" || ref == DefaultListAlias {
		if len(lists) == 0 {
			return nil, ErrNoLists
		}
		return &Resolution{ID: lists[0].ID, Available: lists}, nil
	}

	for _, tl := range lists {
		if tl.ID == ref {
			return &Resolution{ID: tl.ID, Available: lists}, nil
		}
	}

	return nil, &ListNotFoundError{Requested: ref, Available: lists}
}
