// internal/apperrors/errors_test.go
package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	validation := NewValidation("status", "unknown value")
	assert.True(t, IsValidation(validation))
	assert.False(t, IsNotFound(validation))
	assert.Contains(t, validation.Error(), "status")

	notFound := NewNotFound("application", "abc")
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsConflict(notFound))

	conflict := NewConflict("transition %s -> %s is not allowed", "DRAFT", "PAID")
	assert.True(t, IsConflict(conflict))
	assert.Equal(t, "transition DRAFT -> PAID is not allowed", conflict.Error())
}

func TestErrorsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handling request: %w", NewConflict("already paid"))
	assert.True(t, IsConflict(wrapped))
}

func TestPersistenceUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewPersistence("load application", cause)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsValidation(err))
	assert.False(t, IsConflict(err))
}
