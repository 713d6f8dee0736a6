package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorConstructors(t *testing.T) {
	err := NewValidationError("bad input", map[string]any{"field": "status"})
	require.True(t, IsValidation(err))
	domainErr := ToDomainError(err)
	require.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
	require.Equal(t, "status", domainErr.Details["field"])

	err = NewNotFound("case", nil)
	require.True(t, IsNotFound(err))
	require.Equal(t, http.StatusNotFound, ToDomainError(err).HTTPStatus)

	require.Equal(t, http.StatusUnauthorized, ToDomainError(NewUnauthorized("nope")).HTTPStatus)
	require.Equal(t, http.StatusForbidden, ToDomainError(NewForbidden("nope")).HTTPStatus)
	require.Equal(t, http.StatusConflict, ToDomainError(NewConflict("dup", nil)).HTTPStatus)
}

func TestToDomainErrorMapsNoRowsToNotFound(t *testing.T) {
	domainErr := ToDomainError(fmt.Errorf("load case: %w", pgx.ErrNoRows))
	require.Equal(t, "NOT_FOUND", domainErr.Code)
	require.Equal(t, http.StatusNotFound, domainErr.HTTPStatus)
}

func TestToDomainErrorWrapsUnknownAsInternal(t *testing.T) {
	cause := errors.New("connection reset")
	domainErr := ToDomainError(cause)
	require.Equal(t, "INTERNAL_ERROR", domainErr.Code)
	require.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	require.ErrorIs(t, domainErr, cause)
}

func TestToDomainErrorPreservesExisting(t *testing.T) {
	original := NewValidationError("bad", nil)
	wrapped := fmt.Errorf("handler: %w", original)
	require.Same(t, ToDomainError(original), ToDomainError(wrapped))
}

func TestMapErrorNil(t *testing.T) {
	require.NoError(t, MapError(nil))
}
