package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Authentication and authorization errors. Every one of them wraps ErrUnauthorized.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrMissingToken     = errors.New("missing access token")
	ErrInvalidToken     = errors.New("invalid access token")
	ErrInsufficientRole = errors.New("insufficient role")
	ErrRateLimited      = errors.New("rate limit exceeded")
)

// Unauthorized is returned when a mutation runs without an actor.
var Unauthorized = &ApiErr{StatusCode: http.StatusUnauthorized, err: ErrUnauthorized}

func NewMissingTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrMissingToken),
		Details:    "Missing bearer token",
		Field:      "authorization",
	}
}

func NewInvalidTokenError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrInvalidToken),
		Details:    "Bearer token could not be verified",
		Field:      "authorization",
		Cause:      cause,
	}
}

// NewInsufficientRoleError is returned when an authenticated actor lacks every accepted role.
func NewInsufficientRoleError(requiredRoles ...string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrInsufficientRole),
		Details:    fmt.Sprintf("Requires one of the roles %v", requiredRoles),
		Field:      "authorization",
	}
}

// NewNotOwnerError is returned when an actor acts on content that policy reserves to someone else.
func NewNotOwnerError(entity string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, ErrForbidden),
		Details:    fmt.Sprintf("Actor is not permitted to change this %s", entity),
		Field:      "authorization",
	}
}

func NewRateLimitError(scope string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusTooManyRequests,
		err:        ErrRateLimited,
		Details:    fmt.Sprintf("Too many %s requests, slow down", scope),
		Field:      "rate_limit",
	}
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsInsufficientRoleError(err error) bool {
	return errors.Is(err, ErrInsufficientRole)
}
