package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	// Pipeline errors
	ErrorTypeInvalidInput    ErrorType = "invalid_input"
	ErrorTypeTransientFetch  ErrorType = "transient_fetch"
	ErrorTypeDuplicateRecord ErrorType = "duplicate_record"
	ErrorTypePersistence     ErrorType = "persistence"
	ErrorTypeListingFetch    ErrorType = "listing_fetch"
	ErrorTypeArchive         ErrorType = "archive"
	ErrorTypePrecondition    ErrorType = "precondition"

	// Transport errors
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error is a typed error carried through the scrape pipeline
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error (code %d): %s: %v", e.Type, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Wrap creates a typed error around a cause
func Wrap(t ErrorType, message string, err error) *Error {
	return &Error{Type: t, Message: message, Err: err}
}

// WithCode creates a typed error carrying an HTTP status code
func WithCode(t ErrorType, message string, code int) *Error {
	return &Error{Type: t, Message: message, Code: code}
}

// TypeOf returns the type of the first typed error in err's chain
func TypeOf(err error) ErrorType {
	var typed *Error
	if stderrors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries the given type anywhere in its chain
func Is(err error, t ErrorType) bool {
	for err != nil {
		var typed *Error
		if !stderrors.As(err, &typed) {
			return false
		}
		if typed.Type == t {
			return true
		}
		err = typed.Err
	}
	return false
}

// IsSkippable reports whether err only affects a single item.
// Item-level failures never escalate past the per-item operation.
func IsSkippable(err error) bool {
	switch TypeOf(err) {
	case ErrorTypeTransientFetch, ErrorTypeDuplicateRecord, ErrorTypePersistence, ErrorTypeArchive:
		return true
	default:
		return false
	}
}

// IsFatal reports whether err must terminate the whole process
func IsFatal(err error) bool {
	return Is(err, ErrorTypePrecondition)
}

// TypeForStatus maps an HTTP status code to an error type
func TypeForStatus(statusCode int) ErrorType {
	switch {
	case statusCode == 401 || statusCode == 403:
		return ErrorTypeAuth
	case statusCode == 404:
		return ErrorTypeNotFound
	case statusCode == 429:
		return ErrorTypeRateLimit
	case statusCode >= 500:
		return ErrorTypeServerError
	default:
		return ErrorTypeUnknown
	}
}
