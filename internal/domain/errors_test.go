package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("usecase: %w", NewNotFoundError("product not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "usecase: product not found", err.Error())
}

func TestErrorSentinelsKeepIdentity(t *testing.T) {
	err := fmt.Errorf("checkout: %w", ErrEmptyCart)

	assert.True(t, errors.Is(err, ErrEmptyCart))
	assert.False(t, errors.Is(err, ErrInvalidCredentials))
	assert.Equal(t, KindEmptyCart, KindOf(err))
}

func TestStoreErrorRetryable(t *testing.T) {
	base := errors.New("connection reset")
	err := fmt.Errorf("list: %w", &StoreError{Op: "list products", Err: base, Retryable: true})

	assert.True(t, IsRetryable(err))
	assert.True(t, errors.Is(err, base))
	assert.Equal(t, ErrorKind(0), KindOf(err))
	assert.False(t, IsRetryable(&StoreError{Op: "insert", Err: base}))
}
