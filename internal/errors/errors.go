// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. These errors are returned by the vault core
// (stores, crypto engine, issuance engine) and mapped to HTTP status codes by handlers.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested entity does not exist or is soft-deleted
	// when an active view was requested.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data, typically creating over a
	// deleted-but-not-purged name.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates an empty or malformed name, version or request field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidOperation indicates the operation is not permitted in the entity's
	// current state (disabled key, missing private material, no pending certificate).
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrNotImplemented indicates an unsupported algorithm or key type.
	ErrNotImplemented = errors.New("not implemented")

	// ErrDecryptionFailed indicates a malformed or foreign backup blob.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrUnauthorized indicates the request lacks valid authentication credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated caller doesn't have permission.
	ErrForbidden = errors.New("forbidden")
)

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is like Wrap but formats the message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
