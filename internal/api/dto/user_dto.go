package dto

import (
	"github.com/spec-kit/taskpulse/internal/domain"
)

// CreateUserRequest payload. Admin only.
type CreateUserRequest struct {
	Email        string      `json:"email" validate:"required,email"`
	Password     string      `json:"password" validate:"required,min=8"`
	Name         string      `json:"name" validate:"required"`
	Role         domain.Role `json:"role" validate:"required,oneof=admin manager employee"`
	Matricule    string      `json:"matricule" validate:"required"`
	PhoneNumber  string      `json:"phone_number" validate:"required"`
	DepartmentID *string     `json:"department_id"`
	Position     *string     `json:"position"`
}

// UpdateUserRequest payload; absent fields stay unchanged.
type UpdateUserRequest struct {
	Name         *string      `json:"name"`
	PhoneNumber  *string      `json:"phone_number"`
	DepartmentID *string      `json:"department_id"`
	Position     *string      `json:"position"`
	Role         *domain.Role `json:"role" validate:"omitempty,oneof=admin manager employee"`
}
