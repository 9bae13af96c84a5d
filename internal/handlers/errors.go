package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"function-url-api/internal/router"
)

// ErrIntentional is raised by GET /error to exercise the internal error path
var ErrIntentional = errors.New("test error for monitoring")

// ValidationError represents a validation error with field details
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// Fail handles GET /error. The error is deliberately unclassified.
func Fail(ctx context.Context, req *router.Request, exec *router.ExecContext) (router.Result, error) {
	return router.Result{}, fmt.Errorf("handling %s: %w", req.Path, ErrIntentional)
}

// invalidRequest converts validator output into a single 400 error
func invalidRequest(err error) *router.Error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return router.Validationf("Invalid request: %v", err)
	}

	messages := make([]string, 0, len(validationErrors))
	for _, ve := range formatValidationErrors(validationErrors) {
		messages = append(messages, ve.Message)
	}
	return &router.Error{
		Kind:    router.KindValidation,
		Message: "Invalid request: " + strings.Join(messages, "; "),
		Err:     err,
	}
}

func formatValidationErrors(validationErrors validator.ValidationErrors) []ValidationError {
	var errs []ValidationError

	for _, err := range validationErrors {
		var message string

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		default:
			message = fmt.Sprintf("%s is invalid", err.Field())
		}

		errs = append(errs, ValidationError{
			Field:   err.Field(),
			Tag:     err.Tag(),
			Value:   fmt.Sprintf("%v", err.Value()),
			Message: message,
		})
	}

	return errs
}
