package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
	}{
		{ValidationError("bad input"), http.StatusBadRequest},
		{ForbiddenError("nope"), http.StatusForbidden},
		{NotFoundError("missing"), http.StatusNotFound},
		{ConflictError("duplicate"), http.StatusConflict},
		{ExternalError("upstream down", nil), http.StatusBadGateway},
		{InternalError("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.HTTPStatus(), tt.err.Message)
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := ExternalError("twitch api call failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "external")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAsStructuredError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, AsStructuredError(nil))
	})

	t.Run("returns existing structured error", func(t *testing.T) {
		original := NotFoundError("guild not found")
		wrapped := fmt.Errorf("handler: %w", original)

		got := AsStructuredError(wrapped)
		require.Same(t, original, got)
	})

	t.Run("wraps plain errors as internal", func(t *testing.T) {
		got := AsStructuredError(errors.New("oops"))
		assert.Equal(t, TypeInternal, got.Type)
	})
}

func TestWithContext(t *testing.T) {
	err := ValidationError("bad login").WithContext("login", "streamer42")
	resp := err.ToResponse()

	assert.Equal(t, "bad login", resp.Error)
	assert.Equal(t, "streamer42", resp.Context["login"])
}
