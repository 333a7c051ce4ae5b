package dto

import (
	"time"

	"github.com/spec-kit/taskpulse/internal/domain"
)

// CreateDepartmentRequest payload.
type CreateDepartmentRequest struct {
	Name        string  `json:"name" validate:"required"`
	Type        string  `json:"type" validate:"required"`
	Description string  `json:"description"`
	ManagerID   *string `json:"manager_id"`
}

// UpdateDepartmentRequest payload; absent fields stay unchanged.
type UpdateDepartmentRequest struct {
	Name        *string `json:"name"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
	ManagerID   *string `json:"manager_id"`
}

// MembershipRequest names the user for an add/remove employee call.
type MembershipRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// DepartmentResponse is the full department view including its employee set.
type DepartmentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	ManagerID   *string   `json:"manager_id"`
	EmployeeIDs []string  `json:"employee_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewDepartmentResponse maps a domain department.
func NewDepartmentResponse(dept *domain.Department) DepartmentResponse {
	employees := dept.EmployeeIDs
	if employees == nil {
		employees = []string{}
	}
	return DepartmentResponse{
		ID:          dept.ID,
		Name:        dept.Name,
		Type:        dept.Type,
		Description: dept.Description,
		ManagerID:   dept.ManagerID,
		EmployeeIDs: employees,
		CreatedAt:   dept.CreatedAt,
		UpdatedAt:   dept.UpdatedAt,
	}
}
