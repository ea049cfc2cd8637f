package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so controllers can map it to an HTTP status
// without inspecting message text.
type Kind string

const (
	KindValidationFailed  Kind = "VALIDATION_FAILED"
	KindPermissionDenied  Kind = "PERMISSION_DENIED"
	KindNotFound          Kind = "NOT_FOUND"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindOccupied          Kind = "OCCUPIED"
	KindLocked            Kind = "LOCKED"
	KindRateLimited       Kind = "RATE_LIMITED"
	KindInternal          Kind = "INTERNAL"
)

// Error is the caller-facing error type for all booking and spot operations.
// Details carries enough context (current state, allowed states, lock owner)
// for the caller to decide whether a retry makes sense.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetail attaches a single detail field and returns the same error for chaining.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func ValidationFailed(format string, args ...interface{}) *Error {
	return New(KindValidationFailed, format, args...)
}

func PermissionDenied(format string, args ...interface{}) *Error {
	return New(KindPermissionDenied, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func InvalidTransition(format string, args ...interface{}) *Error {
	return New(KindInvalidTransition, format, args...)
}

func Occupied(format string, args ...interface{}) *Error {
	return New(KindOccupied, format, args...)
}

func Locked(format string, args ...interface{}) *Error {
	return New(KindLocked, format, args...)
}

func RateLimited(format string, args ...interface{}) *Error {
	return New(KindRateLimited, format, args...)
}

// KindOf extracts the Kind from any error, unwrapping as needed.
// Unknown errors are classified as internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// DetailsOf returns the detail payload of err, or nil for plain errors.
func DetailsOf(err error) map[string]interface{} {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Details
	}
	return nil
}

// HTTPStatus maps an error kind to the status code controllers respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidationFailed:
		return http.StatusBadRequest
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition:
		return http.StatusConflict
	case KindOccupied, KindLocked:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
