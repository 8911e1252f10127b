package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalid(t *testing.T) {
	err := fmt.Errorf("failed to update idea: %w", Invalid("Invalid status %q", "shipped"))

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrNotFound)

	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, `Invalid status "shipped"`, inputErr.Message)
}

func TestInputError_PlainSentinelIsNotInputError(t *testing.T) {
	var inputErr *InputError
	assert.False(t, errors.As(ErrInvalidInput, &inputErr))
}
