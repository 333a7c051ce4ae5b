// Package authz holds the pure authorization decisions for every resource
// kind. Decisions depend only on the actor (id, role, department) and the
// ownership fields of the target resource, never on stored state, so every
// rule is unit-testable without a transport or a database.
package authz

import (
	"github.com/spec-kit/taskpulse/internal/domain"
)

// UserScope limits a user listing to what the actor may see.
type UserScope struct {
	All          bool
	DepartmentID *string
	SelfID       *string
}

// ListUsersScope returns the server-side visibility filter for user listings.
// Admins see everyone, managers see their own department, employees see
// only themselves.
func ListUsersScope(actor domain.Actor) UserScope {
	switch actor.Role {
	case domain.RoleAdmin:
		return UserScope{All: true}
	case domain.RoleManager:
		return UserScope{DepartmentID: actor.DepartmentID}
	default:
		self := actor.ID
		return UserScope{SelfID: &self}
	}
}

// CanReadUser decides single-user reads.
func CanReadUser(actor domain.Actor, target *domain.User) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.ID == target.ID {
		return true
	}
	if actor.IsManager() && actor.SameDepartment(target.DepartmentID) {
		return true
	}
	return false
}

// CanCreateUser decides account creation. Admin only.
func CanCreateUser(actor domain.Actor) bool {
	return actor.IsAdmin()
}

// CanDeleteUser decides account removal. Admin only.
func CanDeleteUser(actor domain.Actor) bool {
	return actor.IsAdmin()
}

// CanUpdateUser decides user updates. changesRole marks whether the payload
// touches the role field, which only admins may change regardless of any
// other permission they hold on the target.
func CanUpdateUser(actor domain.Actor, target *domain.User, changesRole bool) bool {
	if actor.IsAdmin() {
		return true
	}
	if changesRole {
		return false
	}
	if actor.ID == target.ID {
		return true
	}
	if actor.IsManager() && actor.SameDepartment(target.DepartmentID) {
		return true
	}
	return false
}

// CanManageDepartment decides department create/update/delete. Admin only;
// list and read are open to any authenticated actor.
func CanManageDepartment(actor domain.Actor) bool {
	return actor.IsAdmin()
}

// CanModifyDepartmentMembers decides employee add/remove on a department:
// admin, or the manager recorded on that department. A manager of a
// different department is denied.
func CanModifyDepartmentMembers(actor domain.Actor, dept *domain.Department) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.IsManager() && dept.ManagerID != nil && *dept.ManagerID == actor.ID {
		return true
	}
	return false
}

// ProjectScope limits a project listing to what the actor may see.
type ProjectScope struct {
	All      bool
	MemberID *string
}

// ListProjectsScope returns the server-side visibility filter for project
// listings: admins see all, everyone else sees projects where they are
// manager or team member.
func ListProjectsScope(actor domain.Actor) ProjectScope {
	if actor.IsAdmin() {
		return ProjectScope{All: true}
	}
	member := actor.ID
	return ProjectScope{MemberID: &member}
}

// CanReadProject decides single-project reads: admin, the project manager,
// or a team member.
func CanReadProject(actor domain.Actor, project *domain.Project) bool {
	if actor.IsAdmin() {
		return true
	}
	if project.ManagerID == actor.ID {
		return true
	}
	return project.HasTeamMember(actor.ID)
}

// CanCreateProject decides project creation. Admin or manager role.
func CanCreateProject(actor domain.Actor) bool {
	return actor.IsAdmin() || actor.IsManager()
}

// CanModifyProject decides update, delete, and team membership changes:
// admin or the project's own manager. Managing other projects grants
// nothing here.
func CanModifyProject(actor domain.Actor, project *domain.Project) bool {
	return actor.IsAdmin() || project.ManagerID == actor.ID
}

// TaskScope limits a task listing to what the actor may see.
type TaskScope struct {
	All           bool
	ParticipantID *string
}

// ListTasksScope returns the server-side visibility filter for task
// listings: admins see all, everyone else sees tasks where they are
// assignee or creator.
func ListTasksScope(actor domain.Actor) TaskScope {
	if actor.IsAdmin() {
		return TaskScope{All: true}
	}
	participant := actor.ID
	return TaskScope{ParticipantID: &participant}
}

// CanReadTask decides single-task reads: admin, assignee, or creator.
func CanReadTask(actor domain.Actor, task *domain.Task) bool {
	if actor.IsAdmin() {
		return true
	}
	return task.AssignedTo == actor.ID || task.CreatedBy == actor.ID
}

// CanCreateTask decides task creation. Admin or manager role.
func CanCreateTask(actor domain.Actor) bool {
	return actor.IsAdmin() || actor.IsManager()
}

// CanModifyTask decides full update and delete: admin, assignee, or creator.
func CanModifyTask(actor domain.Actor, task *domain.Task) bool {
	if actor.IsAdmin() {
		return true
	}
	return task.AssignedTo == actor.ID || task.CreatedBy == actor.ID
}

// CanPatchTaskStatus decides status-only updates: admin or assignee. Being
// the creator is not enough for a status change.
func CanPatchTaskStatus(actor domain.Actor, task *domain.Task) bool {
	if actor.IsAdmin() {
		return true
	}
	return task.AssignedTo == actor.ID
}
