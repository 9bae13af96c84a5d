package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure into one of the statuses the router can return
type Kind int

const (
	// KindInternal is any failure a handler did not classify
	KindInternal Kind = iota
	// KindValidation is a malformed or incomplete request
	KindValidation
	// KindDependency is a failed or timed out call to an external service
	KindDependency
	// KindRoutingMiss is an unmatched method and path, raised only by the dispatcher
	KindRoutingMiss
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDependency:
		return "dependency"
	case KindRoutingMiss:
		return "routing_miss"
	default:
		return "internal"
	}
}

// Generic messages for failures whose details must not reach the caller
const (
	internalErrorMessage = "Internal server error"
	timeoutErrorMessage  = "Upstream request timed out"
)

// Common router errors
var (
	ErrRouteNotFound  = errors.New("route not found")
	ErrInvalidBody    = errors.New("invalid request body")
	ErrDuplicateRoute = errors.New("duplicate route")
	ErrInvalidRoute   = errors.New("invalid route")
)

// Error is a classified failure. Message is safe to return to the caller,
// Err carries the internal cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error kind
func (e *Error) Status() int {
	return StatusFor(e.Kind)
}

// Validation creates a validation-class error (400)
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Validationf creates a validation-class error with a formatted message
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// Dependency creates a dependency-class error (502) wrapping the external failure
func Dependency(message string, err error) *Error {
	return &Error{Kind: KindDependency, Message: message, Err: err}
}

func routingMiss(method, path string) *Error {
	return &Error{
		Kind:    KindRoutingMiss,
		Message: fmt.Sprintf("Route not found: %s %s", method, path),
		Err:     ErrRouteNotFound,
	}
}

// StatusFor maps an error kind to its HTTP status code
func StatusFor(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindDependency:
		return http.StatusBadGateway
	case KindRoutingMiss:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Classify turns any error escaping a handler into a classified Error.
// Unclassified errors lose their text and get the generic internal message.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var routerErr *Error
	if errors.As(err, &routerErr) {
		if routerErr.Kind == KindInternal {
			return &Error{Kind: KindInternal, Message: internalErrorMessage, Err: err}
		}
		return routerErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindDependency, Message: timeoutErrorMessage, Err: err}
	}

	return &Error{Kind: KindInternal, Message: internalErrorMessage, Err: err}
}

// IsValidation returns true if the error is a validation-class failure
func IsValidation(err error) bool {
	var routerErr *Error
	return errors.As(err, &routerErr) && routerErr.Kind == KindValidation
}

// IsDependency returns true if the error is a dependency-class failure
func IsDependency(err error) bool {
	var routerErr *Error
	return errors.As(err, &routerErr) && routerErr.Kind == KindDependency
}

// IsRoutingMiss returns true if no route matched the request
func IsRoutingMiss(err error) bool {
	return errors.Is(err, ErrRouteNotFound)
}
