// Package errors provides the sentinel errors shared by every layer of the service.
// Domain packages wrap these sentinels so the HTTP and CLI layers can classify
// failures without knowing about codec internals.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates caller supplied data that cannot be processed
	// (bad wrapping key descriptor, malformed envelope, undecryptable payload).
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable indicates a required capability is missing at runtime,
	// such as the block cipher, the random source or the KMS keeper.
	ErrUnavailable = errors.New("unavailable")

	// ErrTooManyRequests indicates the caller exceeded the configured rate limit.
	ErrTooManyRequests = errors.New("too many requests")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
