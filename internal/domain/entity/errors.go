package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the requested wallet, asset or mapping does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidIdentifier is returned before any backend call for non-positive ids.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrForbidden means the acting user lacks the required wallet role.
	ErrForbidden = errors.New("forbidden")
	// ErrBackendUnavailable wraps transport failures and 5xx answers from the backend.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError builds a *ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// RequireID fails fast on identifiers that cannot exist in the backend.
func RequireID(kind string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s id %d", ErrInvalidIdentifier, kind, id)
	}
	return nil
}
