package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// ErrNoLists indicates the account has no task lists at all, so the
// "@default" alias cannot be resolved.
var ErrNoLists = errors.New("no task lists found")

// ListNotFoundError indicates a requested task list id is not among the
// account's lists. Available carries the lists that do exist so callers can
// surface them for correction.
type ListNotFoundError struct {
	Requested string
	Available []TaskList
}

func (e *ListNotFoundError) Error() string {
	return fmt.Sprintf("task list %q not found", e.Requested)
}

// ValidationError indicates a malformed input that was rejected before any
// remote call was made.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// RemoteError wraps a Google Tasks API failure with its HTTP status code.
type RemoteError struct {
	StatusCode int
	Op         string
	Err        error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("Google Tasks API error: %v", e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// wrapRemoteError classifies an API call failure. googleapi errors keep
// their status code; timeouts get a clearer message.
func wrapRemoteError(op string, err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &RemoteError{StatusCode: gerr.Code, Op: op, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "context deadline exceeded") {
		return &RemoteError{Op: op, Err: fmt.Errorf("request timed out")}
	}

	return &RemoteError{Op: op, Err: err}
}

// IsAuthStatus reports whether a remote error looks like an expired or
// revoked credential (HTTP 401/403).
func IsAuthStatus(err error) bool {
	var rerr *RemoteError
	if errors.As(err, &rerr) {
		return rerr.StatusCode == 401 || rerr.StatusCode == 403
	}
	return false
}

// IsNotFoundStatus reports whether a remote error is an HTTP 404.
func IsNotFoundStatus(err error) bool {
	var rerr *RemoteError
	if errors.As(err, &rerr) {
		return rerr.StatusCode == 404
	}
	return false
}
