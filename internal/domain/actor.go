package domain

// Actor is the authenticated identity performing an operation. It carries
// exactly the fields authorization decisions depend on.
type Actor struct {
	ID           string
	Role         Role
	DepartmentID *string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// IsManager reports whether the actor holds the manager role.
func (a Actor) IsManager() bool { return a.Role == RoleManager }

// SameDepartment reports whether the actor and the given department id match.
// A nil actor department never matches.
func (a Actor) SameDepartment(departmentID *string) bool {
	if a.DepartmentID == nil || departmentID == nil {
		return false
	}
	return *a.DepartmentID == *departmentID
}
