package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorCodesSurviveWrapping(t *testing.T) {
	base := LockTimeout("/data/episodes.json.lock", 10)
	wrapped := fmt.Errorf("save episode: %w", base)

	assert.True(t, Is(wrapped, ErrCodeLockTimeout))
	assert.False(t, Is(wrapped, ErrCodeFile))
	assert.Equal(t, ErrCodeLockTimeout, GetCode(wrapped))
	assert.Equal(t, http.StatusServiceUnavailable, GetHTTPCode(wrapped))
	assert.True(t, Retryable(wrapped))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, 10, appErr.Details["attempts"])
}

func TestGetCodeDefaultsToInternal(t *testing.T) {
	err := fmt.Errorf("plain")
	assert.Equal(t, ErrCodeInternal, GetCode(err))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPCode(err))
	assert.False(t, Retryable(err))
}

func TestDefaultHTTPCodes(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeAuth, http.StatusBadGateway},
		{ErrCodeQuota, http.StatusTooManyRequests},
		{ErrCodeNetwork, http.StatusBadGateway},
		{ErrCodeSubprocess, http.StatusBadGateway},
		{ErrCodeSynthesisUnavailable, http.StatusServiceUnavailable},
		{ErrCodeFile, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, New(tt.code, "x").GetHTTPCode())
		})
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := FileError("write", "/tmp/x.json", cause)

	assert.Contains(t, err.Error(), "FILE_ERROR")
	assert.Contains(t, err.Error(), "permission denied")
	assert.ErrorIs(t, err, cause)
	assert.False(t, err.Retryable())
}
