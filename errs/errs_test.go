package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestContentErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		is     func(error) bool
		status int
	}{
		{"empty title", NewEmptyTitleError("title"), IsEmptyTitle, http.StatusBadRequest},
		{"duplicate slug", NewDuplicateSlugError("post", "hello"), IsDuplicateSlug, http.StatusConflict},
		{"conflict", NewConcurrencyConflictError("post"), IsConcurrencyConflict, http.StatusConflict},
		{"validation", NewValidationError(FieldError{Field: "name", Message: "is required"}), IsValidationFailed, http.StatusBadRequest},
		{"not found", NewNotFound("post"), IsNotFound, http.StatusNotFound},
		{"insufficient role", NewInsufficientRoleError("Admin"), IsUnauthorized, http.StatusForbidden},
		{"missing token", NewMissingTokenError(), IsUnauthorized, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tt.err)
			assert.True(t, tt.is(wrapped))

			var apiErr *ApiErr
			require.True(t, errors.As(wrapped, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestValidationErrorDetails(t *testing.T) {
	err := NewValidationError(
		FieldError{Field: "name", Message: "must be at least 2 characters"},
		FieldError{Field: "description", Message: "is required"},
	)

	assert.Equal(t, "name", err.Field)
	assert.Len(t, err.Fields, 2)
	assert.Contains(t, err.Error(), "description is required")
}

func TestNewDatabaseError(t *testing.T) {
	t.Run("record not found", func(t *testing.T) {
		err := NewDatabaseError("find", "post", gorm.ErrRecordNotFound)
		assert.Equal(t, http.StatusNotFound, err.StatusCode)
		assert.True(t, IsNotFound(err))
	})

	t.Run("unique violation", func(t *testing.T) {
		err := NewDatabaseError("create", "blog", errors.New("UNIQUE constraint failed: blogs.slug"))
		assert.Equal(t, http.StatusConflict, err.StatusCode)
	})

	t.Run("missing reference", func(t *testing.T) {
		err := NewDatabaseError("create", "comment", fmt.Errorf("insert: %w", gorm.ErrForeignKeyViolated))
		assert.Equal(t, http.StatusNotFound, err.StatusCode)
		assert.ErrorIs(t, err, ErrMissingReference)
	})

	t.Run("api errors pass through", func(t *testing.T) {
		orig := NewDuplicateSlugError("blog", "x")
		assert.Same(t, orig, NewDatabaseError("create", "blog", orig))
	})

	t.Run("generic", func(t *testing.T) {
		err := NewDatabaseError("update", "comment", errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
		assert.Contains(t, err.GetFullError(), "boom")
	})
}
