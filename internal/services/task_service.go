package services

import (
	"context"
	"time"

	"tasklist/internal/domain"
	"tasklist/internal/errors"
	"tasklist/internal/validation"
)

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	gateway       TaskGateway
	taskValidator *validation.TaskValidator
	now           func() time.Time
}

// Option customises a TaskService.
type Option func(*taskServiceImpl)

// WithClock replaces the time source used for createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *taskServiceImpl) {
		s.now = now
	}
}

// NewTaskService creates a new TaskService instance
func NewTaskService(gateway TaskGateway, opts ...Option) TaskService {
	s := &taskServiceImpl{
		gateway:       gateway,
		taskValidator: validation.NewTaskValidator(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp returns the current time in UTC at the precision every store keeps.
func (t *taskServiceImpl) timestamp() time.Time {
	return t.now().UTC().Truncate(time.Microsecond)
}

func (t *taskServiceImpl) validate(object string, in TaskInput) error {
	err := t.taskValidator.ValidateFields(object, in.Name, in.Description, in.Status)
	if err == nil {
		return nil
	}
	ve, _ := validation.AsValidationError(err)
	return errors.NewValidationError(ve.GetUserFriendlyMessage(), ve)
}

// findTaskByName returns the live task holding name, or nil when there is none
func (t *taskServiceImpl) findTaskByName(ctx context.Context, name string) (*domain.Task, error) {
	task, err := t.gateway.FindByName(ctx, name)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

// Create validates the input, rejects a name already held by a live task
// and stores the new task.
func (t *taskServiceImpl) Create(ctx context.Context, in TaskInput) (*domain.Task, error) {
	if err := t.validate("task", in); err != nil {
		return nil, err
	}

	existing, err := t.findTaskByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.TaskNameTaken(in.Name)
	}

	now := t.timestamp()
	task := domain.NewTask(in.Name, in.Description, in.Status)
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := t.gateway.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update overwrites the writable fields of a live task. createdAt is preserved.
func (t *taskServiceImpl) Update(ctx context.Context, id string, in TaskInput) (*domain.Task, error) {
	if err := t.validate("task", in); err != nil {
		return nil, err
	}

	task, err := t.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	holder, err := t.findTaskByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if holder != nil && holder.ID != task.ID {
		return nil, domain.TaskNameTaken(in.Name)
	}

	task.Name = in.Name
	task.Description = in.Description
	task.Status = in.Status
	task.UpdatedAt = t.timestamp()
	if task.UpdatedAt.Before(task.CreatedAt) {
		task.UpdatedAt = task.CreatedAt
	}

	if err := t.gateway.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// FindByID returns a live task. Any UUID spelling finds the task stored
// under its canonical form; ids that are not UUIDs are never found.
func (t *taskServiceImpl) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	canonical, ok := t.taskValidator.ParseTaskID(id)
	if !ok {
		return nil, domain.TaskNotFound(id)
	}
	return t.gateway.FindByID(ctx, canonical)
}

// FindAll returns one page of live tasks.
func (t *taskServiceImpl) FindAll(ctx context.Context, req domain.PageRequest) (*domain.TaskPage, error) {
	if req.Page < 0 {
		return nil, errors.NewInvalidInputError("page", req.Page, "must not be negative")
	}
	if req.Size <= 0 {
		return nil, errors.NewInvalidInputError("size", req.Size, "must be greater than zero")
	}
	for _, o := range req.Sort {
		if !o.Field.IsValid() {
			return nil, errors.NewInvalidInputError("sort", o.String(), "unknown sort field")
		}
	}
	return t.gateway.FindAll(ctx, req)
}

// Delete soft-deletes a live task.
func (t *taskServiceImpl) Delete(ctx context.Context, id string) error {
	task, err := t.FindByID(ctx, id)
	if err != nil {
		return err
	}

	at := t.timestamp()
	if at.Before(task.CreatedAt) {
		at = task.CreatedAt
	}
	return t.gateway.SoftDelete(ctx, task.ID, at)
}
