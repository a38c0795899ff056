package domain

import (
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
)

// Field limits for a task.
const (
	MaxNameLength        = 50
	MaxDescriptionLength = 500
)

// Statuses returns every known status in declaration order.
func Statuses() []TaskStatus {
	return []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}
}

// IsValid reports whether s is one of the known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ParseTaskStatus converts the wire representation of a status. Matching is exact.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	status := TaskStatus(s)
	return status, status.IsValid()
}

// Task represents a task in the domain model.
// This is a pure domain model without database-specific concerns.
type Task struct {
	ID          string
	Name        string
	Description string
	Status      TaskStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Deleted     bool
}

// NewTask creates a task that has not been persisted yet.
func NewTask(name, description string, status TaskStatus) Task {
	return Task{
		Name:        name,
		Description: description,
		Status:      status,
	}
}

// IsNew reports whether the task has not been assigned an id yet.
func (t Task) IsNew() bool {
	return t.ID == ""
}

// NameKey returns the key used for case-insensitive name uniqueness.
func (t Task) NameKey() string {
	return NameKey(t.Name)
}

// NameKey folds a task name for case-insensitive comparison.
func NameKey(name string) string {
	return strings.ToLower(name)
}

// String returns the task name for display purposes.
func (t Task) String() string {
	return t.Name
}
