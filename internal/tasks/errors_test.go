package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestWrapRemoteError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, wrapRemoteError("tasks.get", nil))
	})

	t.Run("googleapi error carries status code", func(t *testing.T) {
		apiErr := &googleapi.Error{Code: 404, Message: "Not Found"}
		err := wrapRemoteError("tasks.get", apiErr)

		var rerr *RemoteError
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, 404, rerr.StatusCode)
		assert.Equal(t, "tasks.get", rerr.Op)
		assert.True(t, errors.Is(err, apiErr))
	})

	t.Run("deadline exceeded reported as timeout", func(t *testing.T) {
		err := wrapRemoteError("tasks.list", context.DeadlineExceeded)

		var rerr *RemoteError
		require.True(t, errors.As(err, &rerr))
		assert.Contains(t, rerr.Error(), "timed out")
	})

	t.Run("plain error wrapped without status", func(t *testing.T) {
		err := wrapRemoteError("tasks.insert", fmt.Errorf("connection refused"))

		var rerr *RemoteError
		require.True(t, errors.As(err, &rerr))
		assert.Zero(t, rerr.StatusCode)
	})
}

func TestIsAuthStatus(t *testing.T) {
	unauthorized := wrapRemoteError("tasks.list", &googleapi.Error{Code: 401})
	forbidden := wrapRemoteError("tasks.list", &googleapi.Error{Code: 403})
	notFound := wrapRemoteError("tasks.get", &googleapi.Error{Code: 404})

	assert.True(t, IsAuthStatus(unauthorized))
	assert.True(t, IsAuthStatus(forbidden))
	assert.False(t, IsAuthStatus(notFound))
	assert.False(t, IsAuthStatus(fmt.Errorf("plain")))

	assert.True(t, IsNotFoundStatus(notFound))
	assert.False(t, IsNotFoundStatus(unauthorized))
}

func TestListNotFoundError(t *testing.T) {
	err := &ListNotFoundError{
		Requested: "missing-list",
		Available: []TaskList{{ID: "a", Title: "Personal"}},
	}
	assert.Contains(t, err.Error(), `"missing-list"`)
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Msg: "bad input"}
	assert.Equal(t, "bad input", err.Error())
}
