package events

import (
	"time"

	"github.com/spec-kit/taskpulse/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDeptCreate         EventType = "dept_create"
	EventDeptUpdate         EventType = "dept_update"
	EventDeptAddEmployee    EventType = "dept_add_employee"
	EventDeptRemoveEmployee EventType = "dept_remove_employee"
	EventProjCreate         EventType = "proj_create"
	EventProjUpdate         EventType = "proj_update"
	EventProjAddMember      EventType = "proj_add_member"
	EventProjRemoveMember   EventType = "proj_remove_member"
	EventTaskCreate         EventType = "task_create"
	EventTaskUpdate         EventType = "task_update"
	EventTaskDelete         EventType = "task_delete"
	EventTaskStatusUpdate   EventType = "task_status_update"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// Event represents a domain event emitted after a committed mutation.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// DepartmentPayload accompanies department events. EmployeeID is set for
// membership changes.
type DepartmentPayload struct {
	DepartmentID string  `json:"department_id"`
	Name         string  `json:"name"`
	ManagerID    *string `json:"manager_id,omitempty"`
	EmployeeID   *string `json:"employee_id,omitempty"`
}

// ProjectPayload accompanies project events. MemberID is set for team
// membership changes.
type ProjectPayload struct {
	ProjectID string  `json:"project_id"`
	Name      string  `json:"name"`
	ManagerID string  `json:"manager_id"`
	MemberID  *string `json:"member_id,omitempty"`
}

// TaskPayload accompanies task events.
type TaskPayload struct {
	TaskID     string            `json:"task_id"`
	Title      string            `json:"title"`
	AssignedTo string            `json:"assigned_to"`
	CreatedBy  string            `json:"created_by"`
	Status     domain.TaskStatus `json:"status,omitempty"`
}
