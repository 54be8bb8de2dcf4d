package errs_test

import (
	"errors"
	"testing"

	"dronedelivery/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidInputError(t *testing.T) {
	t.Run("NewInvalidInputError", func(t *testing.T) {
		err := errs.NewInvalidInputError("idempotency key is empty")

		assert.Equal(t, "idempotency key is empty", err.Message)
		require.NoError(t, err.Cause)
		assert.Equal(t, "invalid input: idempotency key is empty", err.Error())
		assert.Equal(t, errs.ErrInvalidInput, err.Unwrap())
	})

	t.Run("NewInvalidInputErrorWithCause", func(t *testing.T) {
		cause := errors.New("length 300 exceeds 255")
		err := errs.NewInvalidInputErrorWithCause("idempotency key too long", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"invalid input: idempotency key too long (cause: length 300 exceeds 255)",
			err.Error())
	})
}

func TestConflictError(t *testing.T) {
	t.Run("formats violated rule", func(t *testing.T) {
		err := errs.NewConflictError("Invalid state transition: DELIVERED -> ASSIGNED")

		assert.Equal(t, "conflict: Invalid state transition: DELIVERED -> ASSIGNED", err.Error())
		assert.Equal(t, errs.ErrConflict, err.Unwrap())
	})

	t.Run("sanitizes newlines", func(t *testing.T) {
		err := errs.NewConflictError("first\nsecond")

		assert.NotContains(t, err.Error(), "\n")
		assert.Contains(t, err.Error(), "first second")
	})
}

func TestObjectNotFoundError(t *testing.T) {
	err := errs.NewObjectNotFoundError("orderId", "123")

	assert.Equal(t, "orderId", err.ParamName)
	assert.Equal(t, "123", err.ID)
	assert.Equal(t, "object not found: orderId is: 123", err.Error())
	assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
}

func TestUnavailableError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := errs.NewUnavailableErrorWithCause("redis", "rate limiter backend is unavailable", cause)

	assert.Equal(t, "redis", err.Service)
	assert.Equal(t, cause, err.Cause)
	assert.Equal(t,
		"redis unavailable: rate limiter backend is unavailable (cause: dial tcp: connection refused)",
		err.Error())
	assert.Equal(t, errs.ErrUnavailable, err.Unwrap())
}

func TestProtocolError(t *testing.T) {
	err := errs.NewProtocolError("unsupported reply type '%'")

	assert.Equal(t, "protocol error: unsupported reply type '%'", err.Error())
	assert.Equal(t, errs.ErrProtocol, err.Unwrap())
}

func TestErrorsCanBeClassified(t *testing.T) {
	t.Run("errors.Is matches sentinels through wrapping", func(t *testing.T) {
		require.ErrorIs(t, errs.NewInvalidInputError("x"), errs.ErrInvalidInput)
		require.ErrorIs(t, errs.NewConflictError("x"), errs.ErrConflict)
		require.ErrorIs(t, errs.NewObjectNotFoundError("x", 1), errs.ErrObjectNotFound)
		require.ErrorIs(t, errs.NewUnavailableError("svc", "x"), errs.ErrUnavailable)
		require.ErrorIs(t, errs.NewProtocolError("x"), errs.ErrProtocol)
	})

	t.Run("sentinels are distinct", func(t *testing.T) {
		require.NotErrorIs(t, errs.NewConflictError("x"), errs.ErrInvalidInput)
		require.NotErrorIs(t, errs.NewUnavailableError("svc", "x"), errs.ErrProtocol)
	})
}
