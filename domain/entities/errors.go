package entities

import (
	"errors"
	"fmt"
)

// ValidationError indicates bad input to the ledger; the operation is
// rejected and never partially applied.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError indicates an operation referenced a nonexistent entity
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// ConfigError indicates a reward tier configuration constraint violation
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid tier configuration: %s", e.Reason)
}

// TransientError indicates an external API failure that exhausted its
// retries but is expected to succeed on a later attempt.
type TransientError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// PermanentError indicates an external API rejection that retrying cannot
// fix, such as a deleted role or missing permission.
type PermanentError struct {
	Op  string
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("%s failed permanently: %v", e.Op, e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is (or wraps) a TransientError
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsPermanent reports whether err is (or wraps) a PermanentError
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
