// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Input errors.
	ErrNoEADFiles = errors.New("no EAD files found")
	ErrNotEAD     = errors.New("not an EAD document")

	// Per-file processing errors.
	ErrSanitization = errors.New("sanitization failed")
	ErrParse        = errors.New("parse failed")
	ErrNoItems      = errors.New("no terminal components found")

	// Selection errors.
	ErrInvalidSelection = errors.New("invalid selection")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsFileScoped reports whether err only affects a single input file and the
// batch may continue.
func IsFileScoped(err error) bool {
	return errors.Is(err, ErrSanitization) ||
		errors.Is(err, ErrParse) ||
		errors.Is(err, ErrNotEAD) ||
		errors.Is(err, ErrNoItems)
}
