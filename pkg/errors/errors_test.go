package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrUnauthenticated, ErrPermissionDenied, ErrInvalidArgument,
		ErrAlreadyExists, ErrFailedPrecondition, ErrNotFound, ErrInternal,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

func TestAppError_ErrorString(t *testing.T) {
	withCause := &AppError{Code: KindInternal, Message: "create failed", Err: fmt.Errorf("db down")}
	assert.Equal(t, "INTERNAL: create failed: db down", withCause.Error())

	bare := &AppError{Code: KindNotFound, Message: "store not found"}
	assert.Equal(t, "NOT_FOUND: store not found", bare.Error())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		kind     Kind
		status   int
		sentinel error
	}{
		{"unauthenticated", Unauthenticated("sign in"), KindUnauthenticated, http.StatusUnauthorized, ErrUnauthenticated},
		{"permission denied", PermissionDenied("nope"), KindPermissionDenied, http.StatusForbidden, ErrPermissionDenied},
		{"invalid argument", InvalidArgument("email", "bad email"), KindInvalidArgument, http.StatusBadRequest, ErrInvalidArgument},
		{"already exists", AlreadyExists("account", "email", "a@b.co"), KindAlreadyExists, http.StatusConflict, ErrAlreadyExists},
		{"failed precondition", FailedPrecondition("self"), KindFailedPrecondition, http.StatusPreconditionFailed, ErrFailedPrecondition},
		{"not found", NotFound("store", "s1"), KindNotFound, http.StatusNotFound, ErrNotFound},
		{"resource exhausted", ResourceExhausted("slow down"), KindResourceExhausted, http.StatusTooManyRequests, ErrResourceExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.True(t, errors.Is(tt.err, tt.sentinel))
		})
	}
}

func TestInvalidArgument_KeepsField(t *testing.T) {
	err := InvalidArgument("password", "password must be at least 6 characters")
	assert.Equal(t, "password", err.Field)
}

func TestAlreadyExists_Message(t *testing.T) {
	err := AlreadyExists("account", "email", "admin@example.com")
	assert.Equal(t, `account with email "admin@example.com" already exists`, err.Message)
}

func TestInternal_DefaultsMessageAndCause(t *testing.T) {
	err := Internal("", nil)
	assert.Equal(t, "an internal error occurred", err.Message)
	assert.True(t, errors.Is(err, ErrInternal))

	cause := errors.New("disk full")
	err = Internal("write failed", cause)
	assert.True(t, errors.Is(err, cause))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindPermissionDenied, KindOf(PermissionDenied("x")))
	assert.Equal(t, KindFailedPrecondition, KindOf(fmt.Errorf("wrap: %w", FailedPrecondition("x"))))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("lookup: %w", ErrNotFound)))
	assert.Equal(t, KindAlreadyExists, KindOf(ErrAlreadyExists))
	assert.Equal(t, KindResourceExhausted, KindOf(fmt.Errorf("quota: %w", ErrResourceExhausted)))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusPreconditionFailed, HTTPStatus(FailedPrecondition("x")))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(fmt.Errorf("auth: %w", ErrUnauthenticated)))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(ErrResourceExhausted))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrNotFound, "get store")
	require.Error(t, err)
	assert.Equal(t, "get store: not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
}
