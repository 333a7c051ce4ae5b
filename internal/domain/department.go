package domain

import "time"

// Department represents an organizational unit.
type Department struct {
	ID          string
	Name        string
	Type        string
	Description string
	ManagerID   *string
	EmployeeIDs []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasEmployee reports whether the user id is a member.
func (d *Department) HasEmployee(userID string) bool {
	for _, id := range d.EmployeeIDs {
		if id == userID {
			return true
		}
	}
	return false
}
