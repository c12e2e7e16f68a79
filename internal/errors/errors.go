// Package errors provides standardized domain errors with codes for the
// Libris services.
//
// Usage:
//
//	// In services - return typed errors
//	if quantityAvailable <= 0 {
//	    return errors.ErrBookUnavailable
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrBookUnavailable) {
//	    // all copies are out
//	}
//
//	// Or use the Code directly for switch statements
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeReaderNotFound:
//	        ...
//	    case errors.CodeReaderTooYoung:
//	        ...
//	    }
//	}
//
// An eventual API layer maps codes to client-visible statuses via
// HTTPStatus: not-found kinds to 404, business-rule rejections to 406.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	// Lookup failures.
	CodeAuthorNotFound Code = "AUTHOR_NOT_FOUND"
	CodeBookNotFound   Code = "BOOK_NOT_FOUND"
	CodeReaderNotFound Code = "READER_NOT_FOUND"
	CodeParentNotFound Code = "PARENT_NOT_FOUND"
	CodeLoanNotFound   Code = "LOAN_NOT_FOUND"

	// Business-rule rejections.
	CodeAuthorExists       Code = "AUTHOR_EXISTS"
	CodeAuthorHasBooks     Code = "AUTHOR_HAS_BOOKS"
	CodeBookBorrowed       Code = "BOOK_BORROWED"
	CodeReaderHasLoan      Code = "READER_HAS_LOAN"
	CodeChildWithoutParent Code = "CHILD_WITHOUT_PARENT"
	CodeReaderNotParent    Code = "READER_NOT_PARENT"
	CodeReaderNotChild     Code = "READER_NOT_CHILD"
	CodeReaderTooYoung     Code = "READER_TOO_YOUNG"
	CodeReaderTooManyLoans Code = "READER_TOO_MANY_LOANS"
	CodeReaderOverdueLoans Code = "READER_OVERDUE_LOANS"
	CodeBookUnavailable    Code = "BOOK_UNAVAILABLE"
	CodeReaderHasBook      Code = "READER_HAS_BOOK"
	CodeInvalidPolicyValue Code = "INVALID_POLICY_VALUE"

	// Input and infrastructure failures.
	CodeValidation Code = "VALIDATION"
	CodeInternal   Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeAuthorNotFound, CodeBookNotFound, CodeReaderNotFound,
		CodeParentNotFound, CodeLoanNotFound:
		return http.StatusNotFound
	case CodeAuthorExists, CodeAuthorHasBooks, CodeBookBorrowed,
		CodeReaderHasLoan, CodeChildWithoutParent, CodeReaderNotParent,
		CodeReaderNotChild, CodeReaderTooYoung, CodeReaderTooManyLoans,
		CodeReaderOverdueLoans, CodeBookUnavailable, CodeReaderHasBook,
		CodeInvalidPolicyValue:
		return http.StatusNotAcceptable
	case CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is(). Services return these
// directly, or via WithDetails/WithCause for extra context.
var (
	ErrAuthorNotFound = &Error{Code: CodeAuthorNotFound, Message: "author not found"}
	ErrBookNotFound   = &Error{Code: CodeBookNotFound, Message: "book not found"}
	ErrReaderNotFound = &Error{Code: CodeReaderNotFound, Message: "reader not found"}
	ErrParentNotFound = &Error{Code: CodeParentNotFound, Message: "parent reader not found"}
	ErrLoanNotFound   = &Error{Code: CodeLoanNotFound, Message: "no open loan for this reader and book"}

	ErrAuthorExists       = &Error{Code: CodeAuthorExists, Message: "author with this name and surname already exists"}
	ErrAuthorHasBooks     = &Error{Code: CodeAuthorHasBooks, Message: "author still has books in the catalog"}
	ErrBookBorrowed       = &Error{Code: CodeBookBorrowed, Message: "book is currently borrowed"}
	ErrReaderHasLoan      = &Error{Code: CodeReaderHasLoan, Message: "reader still has borrowed books"}
	ErrChildWithoutParent = &Error{Code: CodeChildWithoutParent, Message: "child reader requires a parent"}
	ErrReaderNotParent    = &Error{Code: CodeReaderNotParent, Message: "reader is not a parent"}
	ErrReaderNotChild     = &Error{Code: CodeReaderNotChild, Message: "reader is not a child"}
	ErrReaderTooYoung     = &Error{Code: CodeReaderTooYoung, Message: "reader is too young to borrow"}
	ErrReaderTooManyLoans = &Error{Code: CodeReaderTooManyLoans, Message: "reader has reached the open loan limit"}
	ErrReaderOverdueLoans = &Error{Code: CodeReaderOverdueLoans, Message: "reader has overdue books to return"}
	ErrBookUnavailable    = &Error{Code: CodeBookUnavailable, Message: "no copies of the book are available"}
	ErrReaderHasBook      = &Error{Code: CodeReaderHasBook, Message: "reader already has this book on loan"}
	ErrInvalidPolicyValue = &Error{Code: CodeInvalidPolicyValue, Message: "policy values must not be negative"}

	ErrValidation = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal   = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
