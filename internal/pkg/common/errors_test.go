package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomError_IsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("load mapping: %w", ErrNotFound.Wrap(errors.New("no row")))

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrUnauthorized))
	assert.Equal(t, "record not found: no row", ErrNotFound.Wrap(errors.New("no row")).Error())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "validation", err: NewValidationError("no concern provided"), status: http.StatusBadRequest, code: ErrCodeInvalidRequest},
		{name: "custom", err: fmt.Errorf("get: %w", ErrNotFound), status: http.StatusNotFound, code: ErrCodeNotFound},
		{name: "transport", err: NewTransportError("generate", errors.New("timeout")), status: http.StatusBadGateway, code: ErrCodeBadGateway},
		{name: "unknown", err: errors.New("boom"), status: http.StatusInternalServerError, code: ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := StatusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
		})
	}

	_, body := StatusFor(NewTransportError("generate", errors.New("timeout")))
	assert.Equal(t, "generation failed, please retry", body.Message)
}

func TestTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("add ingredient: %w", NewTransportError("create", cause))

	assert.True(t, IsTransportError(err))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, IsValidationError(err))
	assert.Equal(t, "add ingredient: create: connection refused", err.Error())
}
