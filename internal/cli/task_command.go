package cli

import (
	"context"
	"fmt"

	"tasklist/internal/domain"
	"tasklist/internal/services"
)

// taskChanges holds the fields given to `task update`. Nil fields keep
// their current value.
type taskChanges struct {
	Name        *string
	Description *string
	Status      *string
}

// TaskCommand handles the task subcommands
type TaskCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewTaskCommand creates a new task command handler
func NewTaskCommand(app *App) *TaskCommand {
	return &TaskCommand{app: app, errorHandler: NewErrorHandler()}
}

func (c *TaskCommand) run(ctx context.Context, operation string, fn func(ctx context.Context, svc services.TaskService, p *printer) error) error {
	p, err := newPrinter(c.app.out, c.app.config.Commands.OutputDefaultFormat)
	if err != nil {
		return err
	}

	ctx, cancel := c.app.withTimeout(ctx)
	defer cancel()

	svc, closeFn, err := c.app.openService(ctx)
	if err != nil {
		return c.errorHandler.Handle(operation, err)
	}
	defer closeFn()

	if err := fn(ctx, svc, p); err != nil {
		return c.errorHandler.Handle(operation, err)
	}
	return nil
}

// Create stores a new task and prints it
func (c *TaskCommand) Create(ctx context.Context, in services.TaskInput) error {
	return c.run(ctx, "create task", func(ctx context.Context, svc services.TaskService, p *printer) error {
		task, err := svc.Create(ctx, in)
		if err != nil {
			return err
		}
		c.app.logger.WithField("task_id", task.ID).Debug("task created")
		return p.printTask(task)
	})
}

// Get prints one task
func (c *TaskCommand) Get(ctx context.Context, id string) error {
	return c.run(ctx, "get task", func(ctx context.Context, svc services.TaskService, p *printer) error {
		task, err := svc.FindByID(ctx, id)
		if err != nil {
			return err
		}
		return p.printTask(task)
	})
}

// List prints one page of tasks
func (c *TaskCommand) List(ctx context.Context, page, size int, sort []string) error {
	return c.run(ctx, "list tasks", func(ctx context.Context, svc services.TaskService, p *printer) error {
		req := domain.PageRequest{Page: page, Size: size}
		if req.Size <= 0 {
			req.Size = c.app.config.Pagination.DefaultSize
		}
		req.Size = min(req.Size, c.app.config.Pagination.MaxSize)

		for _, raw := range sort {
			order, err := domain.ParseOrder(raw)
			if err != nil {
				return err
			}
			req.Sort = append(req.Sort, order)
		}

		result, err := svc.FindAll(ctx, req)
		if err != nil {
			return err
		}
		return p.printPage(result)
	})
}

// Update applies changes to an existing task and prints the result
func (c *TaskCommand) Update(ctx context.Context, id string, changes taskChanges) error {
	return c.run(ctx, "update task", func(ctx context.Context, svc services.TaskService, p *printer) error {
		current, err := svc.FindByID(ctx, id)
		if err != nil {
			return err
		}

		in := services.TaskInput{Name: current.Name, Description: current.Description, Status: current.Status}
		if changes.Name != nil {
			in.Name = *changes.Name
		}
		if changes.Description != nil {
			in.Description = *changes.Description
		}
		if changes.Status != nil {
			in.Status = domain.TaskStatus(*changes.Status)
		}

		task, err := svc.Update(ctx, id, in)
		if err != nil {
			return err
		}
		return p.printTask(task)
	})
}

// Delete soft-deletes a task
func (c *TaskCommand) Delete(ctx context.Context, id string) error {
	return c.run(ctx, "delete task", func(ctx context.Context, svc services.TaskService, p *printer) error {
		if err := svc.Delete(ctx, id); err != nil {
			return err
		}
		_, err := fmt.Fprintf(p.out, "Deleted task %s\n", id)
		return err
	})
}
