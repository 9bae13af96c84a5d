package fetch

import (
	"errors"
	"fmt"
)

// Common fetch error types
var (
	ErrTimeout         = errors.New("request timed out")
	ErrNetwork         = errors.New("network error")
	ErrUpstreamStatus  = errors.New("unexpected upstream status")
	ErrInvalidPayload  = errors.New("invalid upstream payload")
	ErrInvalidURL      = errors.New("invalid url")
	ErrContextCanceled = errors.New("request canceled")
)

// FetchError represents a failed outbound request with additional context
type FetchError struct {
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s failed with status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s failed: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError
func NewFetchError(url string, status int, err error) *FetchError {
	return &FetchError{URL: url, StatusCode: status, Err: err}
}

// IsTimeout returns true if the request ran out of time
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// Reason returns a short, caller-safe description of a fetch failure
func Reason(err error) string {
	var fetchErr *FetchError
	switch {
	case errors.Is(err, ErrTimeout):
		return "request timed out"
	case errors.As(err, &fetchErr) && errors.Is(err, ErrUpstreamStatus):
		return fmt.Sprintf("upstream returned status %d", fetchErr.StatusCode)
	case errors.Is(err, ErrInvalidPayload):
		return "upstream returned an invalid payload"
	case errors.Is(err, ErrContextCanceled):
		return "request canceled"
	default:
		return "upstream unreachable"
	}
}
