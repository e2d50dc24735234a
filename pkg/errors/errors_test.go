package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrStorage(t *testing.T) {
	cause := errors.New("connection reset")
	err := ErrStorage("insert consignment", cause)

	assert.Equal(t, CodeStorageError, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to insert consignment")
}

func TestErrStorageUnavailable(t *testing.T) {
	err := ErrStorageUnavailable("allocate serial number", errors.New("no reachable servers"))

	assert.Equal(t, CodeStorageUnavailable, err.Code)
	assert.Equal(t, http.StatusServiceUnavailable, err.HTTPStatus)
}

func TestAsAppError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", ErrNotFoundWithID("consignment", "abc"))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "consignment not found", appErr.Message)
	assert.Equal(t, "abc", appErr.Details["id"])
	assert.True(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	appErr := FromError(errors.New("boom"))
	assert.Equal(t, CodeInternalError, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"not found", errors.New("customer Not Found"), CodeNotFound},
		{"invalid", errors.New("invalid consignment id"), CodeValidationError},
		{"must", errors.New("weight must not be negative"), CodeValidationError},
		{"exists", errors.New("consignment number already exists"), CodeConflict},
		{"fallback", errors.New("disk on fire"), CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, MapDomainError(tt.err).Code)
		})
	}
}
