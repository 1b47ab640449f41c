package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// Persistence errors
var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrDatabaseQuery       = errors.New("database query failed")
	ErrDatabaseUnavailable = errors.New("database unavailable")
	ErrMissingReference    = errors.New("referenced record does not exist")
)

// NewNotFound reports a blog, post or comment that is missing or was deleted concurrently.
func NewNotFound(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        fmt.Errorf("%s %w", entity, ErrNotFound),
	}
}

// IsUniqueViolation reports whether err came from a unique index rejecting a write.
// gorm translates the error when TranslateError is on; the string checks cover drivers that don't.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// NewDatabaseError classifies a failed repository call. ApiErr causes pass through unchanged.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	details := fmt.Sprintf("Failed to %s %s", operation, entity)

	var apiErr *ApiErr
	if errors.As(cause, &apiErr) {
		return apiErr
	}

	status, sentinel := http.StatusInternalServerError, ErrDatabaseQuery
	if cause != nil {
		msg := strings.ToLower(cause.Error())
		switch {
		case errors.Is(cause, gorm.ErrRecordNotFound):
			status, sentinel = http.StatusNotFound, fmt.Errorf("%s %w", entity, ErrNotFound)
		case IsUniqueViolation(cause):
			status, sentinel = http.StatusConflict, fmt.Errorf("%s %w", entity, ErrAlreadyExists)
		case errors.Is(cause, gorm.ErrForeignKeyViolated) || strings.Contains(msg, "foreign key constraint"):
			status, sentinel = http.StatusNotFound, ErrMissingReference
			details = fmt.Sprintf("%s refers to a record that no longer exists", entity)
		case strings.Contains(msg, "connection refused") || strings.Contains(msg, "database is closed"):
			status, sentinel = http.StatusServiceUnavailable, ErrDatabaseUnavailable
		}
	}

	return &ApiErr{
		StatusCode: status,
		err:        sentinel,
		Details:    details,
		Cause:      cause,
	}
}
