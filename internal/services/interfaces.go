package services

import (
	"context"
	"time"

	"tasklist/internal/domain"
)

// TaskInput carries the writable fields of a task as supplied by a caller.
type TaskInput struct {
	Name        string
	Description string
	Status      domain.TaskStatus
}

// TaskGateway is the persistence port for tasks. Lookups only see tasks
// that have not been soft-deleted. Not-found results are reported as
// not-found AppErrors.
type TaskGateway interface {
	// Create stores a new task and assigns its id when unset.
	Create(ctx context.Context, task *domain.Task) error
	// Update overwrites name, description, status and updatedAt.
	Update(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	// FindByName matches case-insensitively.
	FindByName(ctx context.Context, name string) (*domain.Task, error)
	FindAll(ctx context.Context, req domain.PageRequest) (*domain.TaskPage, error)
	// SoftDelete flags the task as deleted and sets updatedAt to at.
	SoftDelete(ctx context.Context, id string, at time.Time) error

	Ping(ctx context.Context) error
	Close() error
}

// TaskService handles the task use cases
type TaskService interface {
	Create(ctx context.Context, in TaskInput) (*domain.Task, error)
	Update(ctx context.Context, id string, in TaskInput) (*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	FindAll(ctx context.Context, req domain.PageRequest) (*domain.TaskPage, error)
	Delete(ctx context.Context, id string) error
}
