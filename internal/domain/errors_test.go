package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalid(t *testing.T) {
	err := Invalid("quantity required")
	assert.EqualError(t, err, "quantity required")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), ErrInvalidInput)
	assert.False(t, errors.Is(err, ErrNotFound))
}
