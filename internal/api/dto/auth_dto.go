package dto

import (
	"time"

	"github.com/spec-kit/taskpulse/internal/domain"
)

// RegisterRequest payload. Self-registration always yields an employee.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Name        string `json:"name" validate:"required"`
	Matricule   string `json:"matricule" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the issued token together with the account.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public view of an account. The password hash never
// leaves the service layer.
type UserResponse struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	Role         domain.Role `json:"role"`
	Matricule    string      `json:"matricule"`
	PhoneNumber  string      `json:"phone_number"`
	DepartmentID *string     `json:"department_id"`
	Position     *string     `json:"position"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Role:         user.Role,
		Matricule:    user.Matricule,
		PhoneNumber:  user.PhoneNumber,
		DepartmentID: user.DepartmentID,
		Position:     user.Position,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}
