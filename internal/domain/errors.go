package domain

import "tasklist/internal/errors"

// Message keys reported for task lookups and name collisions.
const (
	CodeTaskNotFound      = "error.task.not_found"
	CodeNameAlreadyExists = "error.task.name.already_exists"
)

// TaskNotFound returns the not-found error for a task id.
func TaskNotFound(id string) *errors.AppError {
	return errors.NewNotFoundError("task", id).WithCode(CodeTaskNotFound)
}

// TaskNameTaken returns the conflict error for a name already held by a live task.
func TaskNameTaken(name string) *errors.AppError {
	return errors.NewConflictError("task", "name", name).WithCode(CodeNameAlreadyExists)
}
