package apperr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"bad request", BadRequest("missing fields"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("unauthorized"), http.StatusUnauthorized},
		{"forbidden", Forbidden("nope"), http.StatusForbidden},
		{"not found", NotFound("unknown user"), http.StatusNotFound},
		{"internal", Internal("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Status())
		})
	}
}

func TestFrom_NormalizesUnknownErrors(t *testing.T) {
	cause := errors.New("pq: relation does not exist")
	e := From(cause)

	assert.Equal(t, http.StatusInternalServerError, e.Status())
	assert.Equal(t, "internal server error", e.Message)
	assert.ErrorIs(t, e, cause)
}

func TestFrom_PreservesWrappedKind(t *testing.T) {
	wrapped := NotFound("unknown user")
	e := From(wrapped)

	assert.Equal(t, http.StatusNotFound, e.Status())
	assert.Equal(t, "unknown user", e.Message)
}

func TestInternal_HidesCauseFromMessage(t *testing.T) {
	cause := errors.New("connection refused")
	e := Internal("unable to delete franchise", cause)

	assert.Equal(t, "unable to delete franchise", e.Message)
	assert.ErrorIs(t, e, cause)
}
