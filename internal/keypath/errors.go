package keypath

import (
	"errors"
	"fmt"
)

// PathErrorCode categorizes path parse failures.
type PathErrorCode string

const (
	// ErrCodeEmptyPath indicates the path string was empty.
	ErrCodeEmptyPath PathErrorCode = "EMPTY_PATH"

	// ErrCodeEmptySegment indicates a zero-length segment ("a..b", trailing dot).
	ErrCodeEmptySegment PathErrorCode = "EMPTY_SEGMENT"

	// ErrCodeBadIndex indicates a malformed bracket group ("a[x]", "a[", "a]b").
	ErrCodeBadIndex PathErrorCode = "BAD_INDEX"
)

// InvalidPathError reports a path string that could not be parsed.
// It is returned by Parse and propagated to callers immediately;
// it is never recoverable.
type InvalidPathError struct {
	// Code identifies the failure category.
	Code PathErrorCode

	// Path is the original path string.
	Path string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("%s: invalid path %q: %s", e.Code, e.Path, e.Message)
}

// IsInvalidPath returns true if the error is an InvalidPathError.
// Uses errors.As to handle wrapped errors.
func IsInvalidPath(err error) bool {
	var pe *InvalidPathError
	return errors.As(err, &pe)
}
