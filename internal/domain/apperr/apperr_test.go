package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := New(KindConflict, "email_taken", "user already exists with this email")
	wrapped := fmt.Errorf("register: %w", err)

	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.True(t, Is(wrapped, "email_taken"))
	assert.False(t, Is(wrapped, "other"))
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("redis down")
	err := Internal("cache_unavailable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal server error", err.Message)
	assert.Contains(t, err.Error(), "redis down")
}
