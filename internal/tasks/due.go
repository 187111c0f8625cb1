package tasks

import (
	"fmt"
	"strings"
	"time"
)

const dueDateLayout = "2006-01-02"

// NormalizeDue converts a caller-supplied due date into the RFC 3339 form the
// Google Tasks API expects. Values that already carry a time component are
// passed through unchanged; plain YYYY-MM-DD dates are pinned to midnight UTC.
// Anything else is a validation error, reported before any remote call.
func NormalizeDue(due string) (string, error) {
	if due == "" {
		return "", nil
	}

	if strings.Contains(due, "T") {
		return due, nil
	}

	parsed, err := time.Parse(dueDateLayout, due)
	if err != nil {
		return "", &ValidationError{
			Msg: fmt.Sprintf("Invalid date format. Please use YYYY-MM-DD format (e.g., '2024-12-31'). Error: %v", err),
		}
	}

	return parsed.Format(dueDateLayout) + "T00:00:00.000Z", nil
}
