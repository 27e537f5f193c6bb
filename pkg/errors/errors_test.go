package errors_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/passlock/passlock/pkg/constants"
	"github.com/passlock/passlock/pkg/errors"
)

func TestErrRateLimitExceeded(t *testing.T) {
	appErr := errors.ErrRateLimitExceeded("login", 5, 15*time.Minute)

	assert.Equal(t, constants.ErrCodeRateLimitExceeded, appErr.Code())
	assert.Equal(t, http.StatusTooManyRequests, appErr.HTTPStatus())
	assert.Equal(t, "login", appErr.Metadata()["operation"])
	assert.Equal(t, 5, appErr.Metadata()["limit"])
	assert.Equal(t, 900, appErr.Metadata()["retry_after_seconds"])
	assert.True(t, errors.IsRateLimitExceeded(appErr))
}

func TestErrCryptoFailureIsOpaque(t *testing.T) {
	a := errors.ErrCryptoFailure()
	b := errors.ErrCryptoFailure()

	// Whatever went wrong, the caller-facing error is always the same.
	assert.Equal(t, a.Error(), b.Error())
	assert.Equal(t, http.StatusUnauthorized, a.HTTPStatus())
	assert.True(t, errors.IsCryptoFailure(a))
	assert.False(t, errors.IsRateLimitExceeded(a))
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	appErr := errors.ErrBackendUnavailable("redis down").WithCause(cause)

	assert.ErrorIs(t, appErr, cause)
	assert.True(t, errors.IsCode(appErr, constants.ErrCodeBackendUnavailable))

	wrapped := fmt.Errorf("check failed: %w", appErr)
	assert.True(t, errors.IsCode(wrapped, constants.ErrCodeBackendUnavailable))
}
