package cli

import (
	"fmt"

	"tasklist/internal/errors"
	"tasklist/internal/validation"
)

// commandError carries a user-facing message while keeping the cause
// reachable through errors.As.
type commandError struct {
	msg string
	err error
}

func (e *commandError) Error() string { return e.msg }
func (e *commandError) Unwrap() error { return e.err }

// ErrorHandler provides centralized error handling for command handlers
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle provides user-friendly error messages for validation and other errors
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if validationErr, ok := err.(*validation.ValidationError); ok {
		return &commandError{msg: fmt.Sprintf("failed to %s: %s", operation, validationErr.GetUserFriendlyMessage()), err: err}
	}

	if _, ok := errors.AsAppError(err); ok {
		return &commandError{msg: fmt.Sprintf("failed to %s: %s", operation, errors.GetUserMessage(err)), err: err}
	}

	return fmt.Errorf("failed to %s: %w", operation, err)
}

// IsValidationError checks if an error is a validation error
func (eh *ErrorHandler) IsValidationError(err error) bool {
	if validation.IsValidationError(err) {
		return true
	}
	return errors.IsErrorType(err, errors.ErrorTypeValidation)
}

// IsNotFoundError checks if an error is a not found error
func (eh *ErrorHandler) IsNotFoundError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeNotFound)
}

// ExitCode maps an error to the process exit status: 2 for rejected
// input, 1 for everything else.
func (eh *ErrorHandler) ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case eh.IsValidationError(err),
		errors.IsErrorType(err, errors.ErrorTypeInvalidInput),
		eh.IsNotFoundError(err),
		errors.IsErrorType(err, errors.ErrorTypeConflict):
		return 2
	default:
		return 1
	}
}
