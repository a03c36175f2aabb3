package query

import (
	"errors"
	"fmt"
)

// QueryErrorCode categorizes filter normalization failures.
type QueryErrorCode string

const (
	// ErrCodeNotObject indicates the filter (or a sub-expression) was not an object.
	ErrCodeNotObject QueryErrorCode = "FILTER_NOT_OBJECT"

	// ErrCodeLogicalNotArray indicates a $and/$or/$nor value was not an array.
	ErrCodeLogicalNotArray QueryErrorCode = "LOGICAL_NOT_ARRAY"
)

// MalformedQueryError reports a filter expression that could not be
// normalized. It is propagated to the caller immediately; it is never
// recoverable.
type MalformedQueryError struct {
	// Code identifies the failure category.
	Code QueryErrorCode

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *MalformedQueryError) Error() string {
	return fmt.Sprintf("%s: malformed query: %s", e.Code, e.Message)
}

// IsMalformedQuery returns true if the error is a MalformedQueryError.
// Uses errors.As to handle wrapped errors.
func IsMalformedQuery(err error) bool {
	var qe *MalformedQueryError
	return errors.As(err, &qe)
}
