package model

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound reports an unresolvable entity id.
	ErrNotFound = errors.New("not found")
	// ErrForbidden reports an authenticated but unauthorized operation.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict reports a delete blocked by dependent active state.
	ErrConflict = errors.New("conflict with active borrowings")
	// ErrAlreadyReturned reports a second return of the same borrowing.
	ErrAlreadyReturned = errors.New("borrowing already marked as returned")
	// ErrInvalidCredentials reports a failed login without revealing
	// whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrTokenMalformed reports a token that cannot be parsed or whose
	// signature does not validate.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenExpired reports a token past its embedded expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrNoAvailableCopies and ErrDuplicateBorrowing surface lending
	// invariant violations from the storage layer.
	ErrNoAvailableCopies  = errors.New("book has no available copies to borrow")
	ErrDuplicateBorrowing = errors.New("already borrowed this book")
)

// ValidationError collects every violated invariant of an operation so
// the caller sees all problems at once, not just the first.
type ValidationError struct {
	Messages []string
}

// NewValidationError creates a ValidationError from the given messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// AsValidationError unwraps err into a ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
