package domain

import "time"

// ProjectStatus enumerates project lifecycle states. Transitions are not
// constrained; any value may follow any other.
type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// Valid reports whether the status is a known value.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusActive, ProjectStatusOnHold, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// Priority enumerates urgency for projects and tasks.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether the priority is a known value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Project is the aggregate for planned work.
type Project struct {
	ID           string
	Name         string
	Description  string
	Status       ProjectStatus
	StartDate    time.Time
	EndDate      time.Time
	ManagerID    string
	TeamIDs      []string
	TaskIDs      []string
	DepartmentID string
	Priority     Priority
	Budget       *float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasTeamMember reports whether the user id is on the team.
func (p *Project) HasTeamMember(userID string) bool {
	for _, id := range p.TeamIDs {
		if id == userID {
			return true
		}
	}
	return false
}
