package models

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", NewNotFoundError("Account", "sub-1"), fiber.StatusNotFound},
		{"conflict", NewConflictError("exists"), fiber.StatusConflict},
		{"invalid operation", NewInvalidOperationError("nope"), fiber.StatusBadRequest},
		{"forbidden", NewForbiddenError("nope"), fiber.StatusForbidden},
		{"unauthorized", NewUnauthorizedError("nope"), fiber.StatusUnauthorized},
		{"internal", NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
		{"plain error", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusForError(tt.err))
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("disk on fire")
	err := NewInternalError(inner)

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "disk on fire")
}
