package validation

import (
	"strings"

	"tasklist/internal/domain"
)

// Message keys reported for invalid task fields.
const (
	CodeNameMandatory        = "error.task.name.mandatory"
	CodeNameTooLong          = "error.task.name.too_long"
	CodeDescriptionMandatory = "error.task.description.mandatory"
	CodeDescriptionTooLong   = "error.task.description.too_long"
	CodeStatusMandatory      = "error.task.status.mandatory"
	CodeStatusInvalid        = "error.task.status.invalid"
)

// TaskValidator provides validation for Task-related operations
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a new task validator
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{
		validator: NewValidator(),
	}
}

// ValidateName checks that name is non-blank and at most 50 characters.
func (tv *TaskValidator) ValidateName(ve *ValidationError, name string) {
	if !tv.validator.IsNonEmptyString(name) {
		ve.AddRequiredError("name", CodeNameMandatory, name)
		return
	}
	if !tv.validator.IsWithinMaxLength(name, domain.MaxNameLength) {
		ve.AddInvalidLengthError("name", CodeNameTooLong, name, 0, domain.MaxNameLength)
	}
}

// ValidateDescription checks that description is non-blank and at most 500 characters.
func (tv *TaskValidator) ValidateDescription(ve *ValidationError, description string) {
	if !tv.validator.IsNonEmptyString(description) {
		ve.AddRequiredError("description", CodeDescriptionMandatory, description)
		return
	}
	if !tv.validator.IsWithinMaxLength(description, domain.MaxDescriptionLength) {
		ve.AddInvalidLengthError("description", CodeDescriptionTooLong, description, 0, domain.MaxDescriptionLength)
	}
}

// ValidateStatus checks that status is present and one of the known values.
func (tv *TaskValidator) ValidateStatus(ve *ValidationError, status domain.TaskStatus) {
	if status == "" {
		ve.AddRequiredError("status", CodeStatusMandatory, nil)
		return
	}
	if !status.IsValid() {
		names := make([]string, 0, 3)
		for _, s := range domain.Statuses() {
			names = append(names, string(s))
		}
		ve.AddInvalidValueError("status", CodeStatusInvalid, string(status), "must be one of "+strings.Join(names, ", "))
	}
}

// ValidateFields validates the writable fields of a task and returns a
// *ValidationError naming object, or nil.
func (tv *TaskValidator) ValidateFields(object, name, description string, status domain.TaskStatus) error {
	validationError := NewValidationError(object)

	tv.ValidateName(validationError, name)
	tv.ValidateDescription(validationError, description)
	tv.ValidateStatus(validationError, status)

	if validationError.HasErrors() {
		return validationError
	}
	return nil
}

// ParseTaskID normalises a task id. ok is false when id cannot identify a task.
func (tv *TaskValidator) ParseTaskID(id string) (string, bool) {
	return tv.validator.ParseTaskID(id)
}
