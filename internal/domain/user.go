package domain

import "time"

// Role enumerates the fixed role model.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// User is the domain model for accounts.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	Matricule    string
	PhoneNumber  string
	DepartmentID *string
	Position     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
