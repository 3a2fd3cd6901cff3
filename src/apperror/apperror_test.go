package apperror

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusBadRequest,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindNotFound:     http.StatusNotFound,
		KindConflict:     http.StatusConflict,
		KindDependency:   http.StatusInternalServerError,
		KindRateLimited:  http.StatusTooManyRequests,
		KindUnknown:      http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), kind.String())
	}
}

func TestKindOfWalksWrapChain(t *testing.T) {
	base := Conflict("feedback already submitted")
	wrapped := errors.Wrap(base, "submit")

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindConflict))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestDependencyKeepsCauseOutOfMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := Dependency("failed to load form", cause)

	assert.Equal(t, "failed to load form", err.Message)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, cause, errors.Cause(err.Unwrap()))
}
