package models

import (
	"errors"
	"fmt"
)

// ValidationError reports a caller mistake: a missing required field, an
// empty search query, or a disallowed upload type. The API layer maps it
// to HTTP 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports that no record exists for the requested id, or
// that an operation needing at least one record ran against an empty
// store. The API layer maps it to HTTP 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// PayloadTooLargeError reports an upload exceeding the ceiling for its
// media class. It belongs to the validation family but maps to HTTP 413.
type PayloadTooLargeError struct {
	MediaType string
	Limit     int64
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("%s uploads are limited to %d MB", e.MediaType, e.Limit/(1024*1024))
}

// StorageError wraps an underlying I/O failure from a storage driver.
// The API layer maps it to HTTP 500 with a generic public message; the
// wrapped error is only logged.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
