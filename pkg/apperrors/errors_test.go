package apperrors

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetails_ReturnsCopy(t *testing.T) {
	detailed := ErrOutOfStock.WithDetails(map[string]interface{}{"variantId": "abc"})

	assert.NotSame(t, ErrOutOfStock, detailed)
	assert.NotNil(t, detailed.Details)
	// Общая переменная не должна быть затронута
	assert.Nil(t, ErrOutOfStock.Details)
	assert.Equal(t, ErrOutOfStock.Code, detailed.Code)
}

func TestWithError_ReturnsCopy(t *testing.T) {
	cause := errors.New("serialization failure")
	wrapped := ErrTransactionAborted.WithError(cause)

	assert.NotSame(t, ErrTransactionAborted, wrapped)
	assert.Nil(t, ErrTransactionAborted.Err)
	assert.ErrorIs(t, wrapped, cause)
}

func TestUnwrapChain(t *testing.T) {
	cause := errors.New("record not found")
	appErr := ErrNotFound(cause)

	assert.True(t, Is(appErr, cause))

	var target *AppError
	require.True(t, As(appErr, &target))
	assert.Equal(t, CodeNotFound, target.Code)
	assert.Equal(t, http.StatusNotFound, target.HTTPCode)
}

func TestErrResetNotAllowedYet(t *testing.T) {
	next := time.Now().Add(12 * time.Hour)
	err := ErrResetNotAllowedYet(next)

	assert.Equal(t, http.StatusForbidden, err.HTTPCode)
	details, ok := err.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, next, details["nextResetAt"])
}

func TestErrDeviceLimitReached(t *testing.T) {
	err := ErrDeviceLimitReached(nil)
	details, ok := err.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, details["requiresReset"])
	_, hasNext := details["nextResetAt"]
	assert.False(t, hasNext)

	next := time.Now().Add(time.Hour)
	err = ErrDeviceLimitReached(&next)
	details = err.Details.(map[string]interface{})
	assert.Equal(t, next, details["nextResetAt"])
}

func TestDomainErrorHTTPCodes(t *testing.T) {
	assert.Equal(t, http.StatusConflict, ErrUsernameTaken.HTTPCode)
	assert.Equal(t, http.StatusUnauthorized, ErrInvalidCredentials.HTTPCode)
	assert.Equal(t, http.StatusForbidden, ErrAccountBlocked.HTTPCode)
	assert.Equal(t, http.StatusBadRequest, ErrInvalidReferralCode.HTTPCode)
	assert.Equal(t, http.StatusBadRequest, ErrInsufficientBalance.HTTPCode)
	assert.Equal(t, http.StatusBadRequest, ErrOutOfStock.HTTPCode)
	assert.Equal(t, http.StatusNotFound, ErrVariantNotFound.HTTPCode)
	assert.Equal(t, http.StatusConflict, ErrTransactionAborted.HTTPCode)
}

func TestMarshalJSON_HidesInternals(t *testing.T) {
	cause := errors.New("pq: connection refused")
	appErr := InternalError(cause)

	data, err := appErr.MarshalJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "connection refused")
	assert.Contains(t, string(data), string(CodeInternalError))
}
