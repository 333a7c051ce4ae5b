package dto

import (
	"time"

	"github.com/spec-kit/taskpulse/internal/domain"
)

// CreateProjectRequest payload. Status always starts at planning.
type CreateProjectRequest struct {
	Name         string          `json:"name" validate:"required"`
	Description  string          `json:"description"`
	StartDate    time.Time       `json:"start_date" validate:"required"`
	EndDate      time.Time       `json:"end_date" validate:"required"`
	ManagerID    string          `json:"manager_id" validate:"required"`
	TeamIDs      []string        `json:"team_ids"`
	DepartmentID string          `json:"department_id" validate:"required"`
	Priority     domain.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Budget       *float64        `json:"budget"`
}

// UpdateProjectRequest payload; absent fields stay unchanged.
type UpdateProjectRequest struct {
	Name         *string               `json:"name"`
	Description  *string               `json:"description"`
	Status       *domain.ProjectStatus `json:"status" validate:"omitempty,oneof=planning active on_hold completed cancelled"`
	StartDate    *time.Time            `json:"start_date"`
	EndDate      *time.Time            `json:"end_date"`
	ManagerID    *string               `json:"manager_id"`
	TeamIDs      []string              `json:"team_ids"`
	DepartmentID *string               `json:"department_id"`
	Priority     *domain.Priority      `json:"priority" validate:"omitempty,oneof=low medium high"`
	Budget       *float64              `json:"budget"`
}

// ProjectResponse is the full project view including team and task sets.
type ProjectResponse struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Status       domain.ProjectStatus `json:"status"`
	StartDate    time.Time            `json:"start_date"`
	EndDate      time.Time            `json:"end_date"`
	ManagerID    string               `json:"manager_id"`
	TeamIDs      []string             `json:"team_ids"`
	TaskIDs      []string             `json:"task_ids"`
	DepartmentID string               `json:"department_id"`
	Priority     domain.Priority      `json:"priority"`
	Budget       *float64             `json:"budget"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// NewProjectResponse maps a domain project.
func NewProjectResponse(project *domain.Project) ProjectResponse {
	team := project.TeamIDs
	if team == nil {
		team = []string{}
	}
	tasks := project.TaskIDs
	if tasks == nil {
		tasks = []string{}
	}
	return ProjectResponse{
		ID:           project.ID,
		Name:         project.Name,
		Description:  project.Description,
		Status:       project.Status,
		StartDate:    project.StartDate,
		EndDate:      project.EndDate,
		ManagerID:    project.ManagerID,
		TeamIDs:      team,
		TaskIDs:      tasks,
		DepartmentID: project.DepartmentID,
		Priority:     project.Priority,
		Budget:       project.Budget,
		CreatedAt:    project.CreatedAt,
		UpdatedAt:    project.UpdatedAt,
	}
}
