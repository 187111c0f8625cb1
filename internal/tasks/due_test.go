package tasks

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:     "empty passes through",
			input:    "",
			expected: "",
		},
		{
			name:     "plain date pinned to midnight UTC",
			input:    "2024-12-31",
			expected: "2024-12-31T00:00:00.000Z",
		},
		{
			name:     "full timestamp passes through",
			input:    "2024-12-31T15:04:05.000Z",
			expected: "2024-12-31T15:04:05.000Z",
		},
		{
			name:     "timestamp without milliseconds passes through",
			input:    "2024-06-01T00:00:00Z",
			expected: "2024-06-01T00:00:00Z",
		},
		{
			name:    "garbage rejected",
			input:   "tomorrow",
			wantErr: true,
		},
		{
			name:    "wrong order rejected",
			input:   "31-12-2024",
			wantErr: true,
		},
		{
			name:    "month out of range rejected",
			input:   "2024-13-01",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDue(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var verr *ValidationError
				assert.True(t, errors.As(err, &verr))
				assert.Contains(t, verr.Error(), "YYYY-MM-DD")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
