package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Content lifecycle errors. All of them are recoverable by the caller.
var (
	ErrValidationFailed    = errors.New("validation failed")
	ErrEmptyTitle          = errors.New("title produces an empty slug")
	ErrDuplicateSlug       = errors.New("slug already in use")
	ErrConcurrencyConflict = errors.New("record changed since it was read")
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErr carries every field failure of one input.
type ValidationErr struct {
	*ApiErr
	Fields []FieldError
}

func (e *ValidationErr) Unwrap() error {
	return e.ApiErr
}

func NewValidationError(fields ...FieldError) *ValidationErr {
	apiErr := &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrValidationFailed,
	}
	if len(fields) > 0 {
		apiErr.Field = fields[0].Field
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, fmt.Sprintf("%s %s", f.Field, f.Message))
		}
		apiErr.Details = strings.Join(parts, "; ")
	}
	return &ValidationErr{ApiErr: apiErr, Fields: fields}
}

func NewEmptyTitleError(field string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrEmptyTitle,
		Details:    fmt.Sprintf("The %s cannot be left blank", field),
		Field:      field,
	}
}

func NewDuplicateSlugError(entity, slug string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        ErrDuplicateSlug,
		Details:    fmt.Sprintf("a %s with slug %q already exists", entity, slug),
		Field:      "slug",
	}
}

func NewConcurrencyConflictError(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        ErrConcurrencyConflict,
		Details:    fmt.Sprintf("%s was modified concurrently; reload and retry", entity),
		Field:      "version",
	}
}

func IsValidationFailed(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}

func IsEmptyTitle(err error) bool {
	return errors.Is(err, ErrEmptyTitle)
}

func IsDuplicateSlug(err error) bool {
	return errors.Is(err, ErrDuplicateSlug)
}

func IsConcurrencyConflict(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}
