package errorwrapper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name            string
		originalError   error
		message         string
		expectedMessage string
	}{
		{
			name:            "wrap simple error",
			originalError:   errors.New("original error"),
			message:         "wrapper message",
			expectedMessage: "wrapper message: original error",
		},
		{
			name:            "wrap nil error",
			originalError:   nil,
			message:         "wrapper message",
			expectedMessage: "wrapper message: <nil>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrappedError := WrapError(tt.originalError, tt.message)
			assert.Error(t, wrappedError)
			assert.Equal(t, tt.expectedMessage, wrappedError.Error())
		})
	}
}

func TestWrapError_PreservesChain(t *testing.T) {
	err := WrapError(ErrTimeout, "navigate")
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestEngineError(t *testing.T) {
	cause := errors.New("net::ERR_NAME_NOT_RESOLVED")
	err := NewEngineError("navigate", "https://example.com", cause)

	assert.Equal(t, "navigate https://example.com: net::ERR_NAME_NOT_RESOLVED", err.Error())
	assert.True(t, errors.Is(err, cause))

	noURL := NewEngineError("launch", "", cause)
	assert.Equal(t, "launch: net::ERR_NAME_NOT_RESOLVED", noURL.Error())
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("timeout", -1, "must be positive")
	assert.Contains(t, err.Error(), "timeout")
	assert.Contains(t, err.Error(), "must be positive")
}
