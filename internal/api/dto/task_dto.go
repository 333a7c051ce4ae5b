package dto

import (
	"time"

	"github.com/spec-kit/taskpulse/internal/domain"
)

// CreateTaskRequest payload. The creator is taken from the authenticated
// principal, never from the body.
type CreateTaskRequest struct {
	Title         string            `json:"title" validate:"required"`
	Description   string            `json:"description"`
	Priority      domain.Priority   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status        domain.TaskStatus `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	DueDate       time.Time         `json:"due_date" validate:"required"`
	AssignedTo    string            `json:"assigned_to" validate:"required"`
	ProjectID     *string           `json:"project_id"`
	DependencyIDs []string          `json:"dependency_ids"`
	Attachments   []string          `json:"attachments"`
}

// UpdateTaskRequest payload; absent fields stay unchanged.
type UpdateTaskRequest struct {
	Title         *string            `json:"title"`
	Description   *string            `json:"description"`
	Priority      *domain.Priority   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status        *domain.TaskStatus `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	DueDate       *time.Time         `json:"due_date"`
	AssignedTo    *string            `json:"assigned_to"`
	ProjectID     *string            `json:"project_id"`
	DependencyIDs []string           `json:"dependency_ids"`
	Attachments   []string           `json:"attachments"`
}

// UpdateTaskStatusRequest payload for the status-only endpoint.
type UpdateTaskStatusRequest struct {
	Status domain.TaskStatus `json:"status" validate:"required,oneof=todo in_progress done"`
}

// TaskResponse is the full task view including its dependency set.
type TaskResponse struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Priority      domain.Priority   `json:"priority"`
	Status        domain.TaskStatus `json:"status"`
	DueDate       time.Time         `json:"due_date"`
	AssignedTo    string            `json:"assigned_to"`
	ProjectID     *string           `json:"project_id"`
	DependencyIDs []string          `json:"dependency_ids"`
	Attachments   []string          `json:"attachments"`
	CreatedBy     string            `json:"created_by"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// NewTaskResponse maps a domain task.
func NewTaskResponse(task *domain.Task) TaskResponse {
	deps := task.DependencyIDs
	if deps == nil {
		deps = []string{}
	}
	attachments := task.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return TaskResponse{
		ID:            task.ID,
		Title:         task.Title,
		Description:   task.Description,
		Priority:      task.Priority,
		Status:        task.Status,
		DueDate:       task.DueDate,
		AssignedTo:    task.AssignedTo,
		ProjectID:     task.ProjectID,
		DependencyIDs: deps,
		Attachments:   attachments,
		CreatedBy:     task.CreatedBy,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
}
