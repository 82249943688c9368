package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorKeepsDomainErrors(t *testing.T) {
	conflict := NewConflict("no agent available", map[string]any{"ticket_id": int64(3)})
	wrapped := fmt.Errorf("assign: %w", conflict)

	domainErr := ToDomainError(wrapped)

	require.NotNil(t, domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
	assert.Equal(t, http.StatusConflict, domainErr.HTTPStatus)
}

func TestToDomainErrorWrapsUnknownErrors(t *testing.T) {
	domainErr := ToDomainError(errors.New("connection refused"))

	require.NotNil(t, domainErr)
	assert.Equal(t, "INTERNAL_ERROR", domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	assert.EqualError(t, domainErr.Unwrap(), "connection refused")
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestNewNotFoundMessage(t *testing.T) {
	err := NewNotFound("ticket", map[string]any{"ticket_id": int64(9)})

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ticket not found", domainErr.Message)
	assert.Equal(t, http.StatusNotFound, domainErr.HTTPStatus)
}
