// Package errors provides the error vocabulary shared by every secrethold layer.
// Domain packages wrap these sentinels so that outer surfaces (HTTP, CLI) can map
// failures to responses without knowing about cryptography or storage details.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel categories. Each domain error wraps exactly one of them.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the caller could not prove knowledge of a credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrIntegrity indicates persisted data is corrupted and cannot be interpreted.
	ErrIntegrity = errors.New("integrity violation")

	// ErrNotSupported indicates the configured backend cannot perform the operation.
	ErrNotSupported = errors.New("not supported")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message while preserving the error chain. A nil err stays nil.
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
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Category returns the sentinel err wraps, or nil when it wraps none of them.
func Category(err error) error {
	for _, sentinel := range []error{ErrNotFound, ErrInvalidInput, ErrUnauthorized, ErrIntegrity, ErrNotSupported} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return nil
}
