// Package errors contains helper functions and types to work with errors
package errors

import (
	"errors"
	"net/http"
)

// Category defines error category
type Category int

const (
	// CategoryNoError means the operation completed without error.
	CategoryNoError Category = iota
	// CategoryDataError The client sends some invalid data in the request,
	// for example, missing or incorrect content in the payload or parameters.
	CategoryDataError
	// CategoryUnauthorized The client has no valid session for the requested resource
	CategoryUnauthorized
	// CategoryResourceNotFound The client is attempting to access a resource that does not exist
	CategoryResourceNotFound
	// CategoryStateConflict The request violates a precondition established by an
	// earlier step of the claim/connect flow (e.g. no claim today, already submitted).
	CategoryStateConflict
	// CategoryRateLimited The client exceeded the per-email attempt window
	CategoryRateLimited
	// CategoryGone The requested resource existed but its entitlement window has passed
	CategoryGone
	// CategoryUnavailable The service cannot satisfy the request right now (e.g. empty catalog)
	CategoryUnavailable
	// CategoryDependencyFailure A dependent service (video prep, email provider) is failing
	CategoryDependencyFailure
	// CategoryGeneralError The service failed in an unexpected way
	CategoryGeneralError
)

func (c Category) String() string {
	switch c {
	case CategoryDataError:
		return "CategoryDataError"
	case CategoryUnauthorized:
		return "CategoryUnauthorized"
	case CategoryResourceNotFound:
		return "CategoryResourceNotFound"
	case CategoryStateConflict:
		return "CategoryStateConflict"
	case CategoryRateLimited:
		return "CategoryRateLimited"
	case CategoryGone:
		return "CategoryGone"
	case CategoryUnavailable:
		return "CategoryUnavailable"
	case CategoryDependencyFailure:
		return "CategoryDependencyFailure"
	default:
		return "CategoryGeneralError"
	}
}

// ServiceError represents a service-specific error carrying a machine-readable
// code (rendered as the "error" field of JSON responses) and a human-readable
// message.
type ServiceError struct {
	Category Category
	Code     string
	Message  string
	// WaitSeconds is set for rate-limited errors and rendered as "waitSeconds".
	WaitSeconds int
	Err         error
}

// Error method to comply with error interface
func (err ServiceError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Message
}

// Unwrap returns the underlying error
func (err ServiceError) Unwrap() error {
	return err.Err
}

// Is checks that provided error is a ServiceError with desired Category
func Is(err error, cat Category) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Category == cat {
		return true
	}
	return false
}

// Code returns the machine-readable code of a ServiceError, or "server_error"
// for any other error.
func Code(err error) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return "server_error"
}

// StatusCode returns the HTTP status code for the error category
func (err ServiceError) StatusCode() int {
	switch err.Category {
	case CategoryDataError, CategoryStateConflict:
		return http.StatusBadRequest
	case CategoryUnauthorized:
		return http.StatusUnauthorized
	case CategoryResourceNotFound:
		return http.StatusNotFound
	case CategoryRateLimited:
		return http.StatusTooManyRequests
	case CategoryGone:
		return http.StatusGone
	case CategoryUnavailable:
		return http.StatusServiceUnavailable
	case CategoryDependencyFailure:
		// Upstream failures are reported as plain server errors to the client;
		// the distinction matters only for logs and metrics.
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func wrap(cat Category, code, message string, err error) error {
	if err == nil {
		err = errors.New(code + ": " + message)
	}
	return &ServiceError{
		Category: cat,
		Code:     code,
		Message:  message,
		Err:      err,
	}
}

// GeneralError returns a general service error. The message sent to the user
// is generic; the error passed is logged by the caller.
func GeneralError(err error) error {
	return wrap(CategoryGeneralError, "server_error", "An unexpected error occurred", err)
}

// BadRequestError returns an error with category DataError
func BadRequestError(code string, err error, message string) error {
	return wrap(CategoryDataError, code, message, err)
}

// UnAuthorizedError returns an error with category CategoryUnauthorized
func UnAuthorizedError(err error, message string) error {
	return wrap(CategoryUnauthorized, "unauthorized", message, err)
}

// NotFoundError returns an error with category ResourceNotFound
func NotFoundError(code string, err error, message string) error {
	return wrap(CategoryResourceNotFound, code, message, err)
}

// StateConflictError returns an error describing a violated flow precondition
func StateConflictError(code string, err error, message string) error {
	return wrap(CategoryStateConflict, code, message, err)
}

// GoneError returns an error with category CategoryGone
func GoneError(code string, err error, message string) error {
	return wrap(CategoryGone, code, message, err)
}

// UnavailableError returns an error with category CategoryUnavailable
func UnavailableError(code string, err error, message string) error {
	return wrap(CategoryUnavailable, code, message, err)
}

// UpstreamError returns an error with category CategoryDependencyFailure
func UpstreamError(code string, err error, message string) error {
	return wrap(CategoryDependencyFailure, code, message, err)
}

// RateLimitedError returns an error with category CategoryRateLimited carrying
// the number of seconds the client must wait before retrying.
func RateLimitedError(waitSeconds int, message string) error {
	return &ServiceError{
		Category:    CategoryRateLimited,
		Code:        "rate_limited",
		Message:     message,
		WaitSeconds: waitSeconds,
		Err:         errors.New("rate limited"),
	}
}
