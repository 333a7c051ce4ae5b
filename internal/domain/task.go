package domain

import "time"

// TaskStatus enumerates task lifecycle states. Transitions are not
// constrained; any value may follow any other.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Valid reports whether the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Task is the domain model for a unit of work.
type Task struct {
	ID            string
	Title         string
	Description   string
	Priority      Priority
	Status        TaskStatus
	DueDate       time.Time
	AssignedTo    string
	ProjectID     *string
	DependencyIDs []string
	Attachments   []string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
