package sqlite

import (
	"fmt"

	"tasklist/internal/domain"
)

// toDomain converts a stored row into a domain task.
func toDomain(row *taskRow) (*domain.Task, error) {
	createdAt, err := ParseTimeFromDB(row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("task %s: created_at: %w", row.ID, err)
	}
	updatedAt, err := ParseTimeFromDB(row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("task %s: updated_at: %w", row.ID, err)
	}
	status, ok := domain.ParseTaskStatus(row.Status)
	if !ok {
		return nil, fmt.Errorf("task %s: unknown status %q", row.ID, row.Status)
	}

	return &domain.Task{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Status:      status,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		Deleted:     row.Deleted,
	}, nil
}

// toDomainList converts rows, stopping at the first malformed one.
func toDomainList(rows []*taskRow) ([]*domain.Task, error) {
	tasks := make([]*domain.Task, 0, len(rows))
	for _, row := range rows {
		task, err := toDomain(row)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// fromDomain converts a domain task into its stored form.
func fromDomain(task *domain.Task) taskRow {
	return taskRow{
		ID:          task.ID,
		Name:        task.Name,
		NameKey:     task.NameKey(),
		Description: task.Description,
		Status:      string(task.Status),
		CreatedAt:   FormatTimeForDB(task.CreatedAt),
		UpdatedAt:   FormatTimeForDB(task.UpdatedAt),
		Deleted:     task.Deleted,
	}
}
