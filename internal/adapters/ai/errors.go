package ai

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyQuery    = errors.New("query is empty")
	ErrModelTimeout  = errors.New("model invocation timed out")
	ErrModelFailure  = errors.New("model invocation failed")
	ErrEmptyResponse = errors.New("model returned no text")
)

// ModelError represents a failed model invocation
type ModelError struct {
	ModelID string
	Err     error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model %s: %v", e.ModelID, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// IsTimeout returns true if the model did not answer in time
func IsTimeout(err error) bool {
	return errors.Is(err, ErrModelTimeout)
}
