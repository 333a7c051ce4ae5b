package service

import (
	"context"
	"time"

	"github.com/spec-kit/taskpulse/internal/authz"
	"github.com/spec-kit/taskpulse/internal/domain"
	"github.com/spec-kit/taskpulse/internal/events"
	"github.com/spec-kit/taskpulse/internal/repository"
	"github.com/spec-kit/taskpulse/internal/validation"
	"github.com/spec-kit/taskpulse/pkg/util"
)

// ProjectService orchestrates project mutations.
type ProjectService struct {
	projects   repository.ProjectRepository
	validator  *validation.ReferenceValidator
	dispatcher events.Dispatcher
}

// ProjectDependencies bundles requirements for the project service.
type ProjectDependencies struct {
	ProjectRepo repository.ProjectRepository
	Validator   *validation.ReferenceValidator
	Dispatcher  events.Dispatcher
}

// NewProjectService constructs the service.
func NewProjectService(deps ProjectDependencies) *ProjectService {
	return &ProjectService{
		projects:   deps.ProjectRepo,
		validator:  deps.Validator,
		dispatcher: deps.Dispatcher,
	}
}

// ProjectCreateInput describes project creation.
type ProjectCreateInput struct {
	Name         string
	Description  string
	StartDate    time.Time
	EndDate      time.Time
	ManagerID    string
	TeamIDs      []string
	DepartmentID string
	Priority     domain.Priority
	Budget       *float64
}

// ProjectUpdateInput carries a partial update; nil fields are untouched.
type ProjectUpdateInput struct {
	Name         *string
	Description  *string
	Status       *domain.ProjectStatus
	StartDate    *time.Time
	EndDate      *time.Time
	ManagerID    *string
	TeamIDs      []string
	DepartmentID *string
	Priority     *domain.Priority
	Budget       *float64
}

// ProjectListFilter carries the supported query filters; visibility scoping
// is applied on top server-side.
type ProjectListFilter struct {
	DepartmentID *string
	Status       *domain.ProjectStatus
	Limit        int
	Offset       int
}

// List returns projects visible to the actor: all for admins, otherwise
// only projects where the actor is manager or team member.
func (s *ProjectService) List(ctx context.Context, actor domain.Actor, filter ProjectListFilter) ([]domain.Project, error) {
	repoFilter := repository.ProjectFilter{
		DepartmentID: filter.DepartmentID,
		Status:       filter.Status,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}
	scope := authz.ListProjectsScope(actor)
	if !scope.All {
		repoFilter.MemberID = scope.MemberID
	}
	return s.projects.ListWithFilter(ctx, repoFilter)
}

// Get fetches a single project the actor may read.
func (s *ProjectService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "project")
	}
	if !authz.CanReadProject(actor, project) {
		return nil, util.NewForbidden("not authorized to view this project")
	}
	return project, nil
}

// Create adds a project. Admin or manager role. Every referenced entity is
// resolved before the write; a failed reference aborts the whole creation.
func (s *ProjectService) Create(ctx context.Context, actor domain.Actor, input ProjectCreateInput) (*domain.Project, error) {
	if !authz.CanCreateProject(actor) {
		return nil, util.NewForbidden("only admins and managers can create projects")
	}

	if err := s.validator.ProjectDates(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	if err := s.validator.DepartmentExists(ctx, "department", input.DepartmentID); err != nil {
		return nil, err
	}
	if err := s.validator.UserExists(ctx, "manager", input.ManagerID); err != nil {
		return nil, err
	}
	if err := s.validator.UsersExist(ctx, "team", input.TeamIDs); err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, util.NewValidationError("invalid priority", map[string]any{"field": "priority"})
	}

	project := &domain.Project{
		Name:         input.Name,
		Description:  input.Description,
		Status:       domain.ProjectStatusPlanning,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		ManagerID:    input.ManagerID,
		TeamIDs:      input.TeamIDs,
		DepartmentID: input.DepartmentID,
		Priority:     priority,
		Budget:       input.Budget,
	}
	if project.TeamIDs == nil {
		project.TeamIDs = []string{}
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventProjCreate,
		EntityID: project.ID,
		Actor:    eventActor(actor),
		Payload: events.ProjectPayload{
			ProjectID: project.ID,
			Name:      project.Name,
			ManagerID: project.ManagerID,
		},
	})
	return project, nil
}

// Update applies a partial update: admin or the project's own manager.
// Authorization runs against the pre-mutation manager, so handing the
// project to someone else in the same call cannot be used to escalate.
func (s *ProjectService) Update(ctx context.Context, actor domain.Actor, id string, input ProjectUpdateInput) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "project")
	}
	if !authz.CanModifyProject(actor, project) {
		return nil, util.NewForbidden("not authorized to update this project")
	}

	start := project.StartDate
	end := project.EndDate
	if input.StartDate != nil {
		start = *input.StartDate
	}
	if input.EndDate != nil {
		end = *input.EndDate
	}
	if input.StartDate != nil || input.EndDate != nil {
		if err := s.validator.ProjectDates(start, end); err != nil {
			return nil, err
		}
	}
	if input.DepartmentID != nil && *input.DepartmentID != project.DepartmentID {
		if err := s.validator.DepartmentExists(ctx, "department", *input.DepartmentID); err != nil {
			return nil, err
		}
	}
	if input.ManagerID != nil && *input.ManagerID != project.ManagerID {
		if err := s.validator.UserExists(ctx, "manager", *input.ManagerID); err != nil {
			return nil, err
		}
	}
	if input.TeamIDs != nil {
		if err := s.validator.UsersExist(ctx, "team", input.TeamIDs); err != nil {
			return nil, err
		}
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, util.NewValidationError("invalid status", map[string]any{"field": "status"})
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, util.NewValidationError("invalid priority", map[string]any{"field": "priority"})
	}

	if input.Name != nil {
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		project.Status = *input.Status
	}
	project.StartDate = start
	project.EndDate = end
	if input.ManagerID != nil {
		project.ManagerID = *input.ManagerID
	}
	if input.TeamIDs != nil {
		project.TeamIDs = input.TeamIDs
	}
	if input.DepartmentID != nil {
		project.DepartmentID = *input.DepartmentID
	}
	if input.Priority != nil {
		project.Priority = *input.Priority
	}
	if input.Budget != nil {
		project.Budget = input.Budget
	}

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, asNotFound(err, "project")
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventProjUpdate,
		EntityID: project.ID,
		Actor:    eventActor(actor),
		Payload: events.ProjectPayload{
			ProjectID: project.ID,
			Name:      project.Name,
			ManagerID: project.ManagerID,
		},
	})
	return project, nil
}

// Delete removes a project: admin or the project's own manager.
func (s *ProjectService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return asNotFound(err, "project")
	}
	if !authz.CanModifyProject(actor, project) {
		return util.NewForbidden("not authorized to delete this project")
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return asNotFound(err, "project")
	}
	return nil
}

// AddTeamMember appends a user to the team set; same permission rule as
// update. The append is atomic; adding an existing member fails without
// changing the set.
func (s *ProjectService) AddTeamMember(ctx context.Context, actor domain.Actor, projectID, userID string) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, asNotFound(err, "project")
	}
	if !authz.CanModifyProject(actor, project) {
		return nil, util.NewForbidden("not authorized to modify this project's team")
	}
	if err := s.validator.UserExists(ctx, "member", userID); err != nil {
		return nil, err
	}

	added, err := s.projects.AddTeamMember(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, util.NewValidationError("user is already on the team", map[string]any{
			"field": "member",
			"id":    userID,
		})
	}

	project, err = s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, asNotFound(err, "project")
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventProjAddMember,
		EntityID: project.ID,
		Actor:    eventActor(actor),
		Payload: events.ProjectPayload{
			ProjectID: project.ID,
			Name:      project.Name,
			ManagerID: project.ManagerID,
			MemberID:  &userID,
		},
	})
	return project, nil
}

// RemoveTeamMember removes a user from the team set; removing a non-member
// fails.
func (s *ProjectService) RemoveTeamMember(ctx context.Context, actor domain.Actor, projectID, userID string) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, asNotFound(err, "project")
	}
	if !authz.CanModifyProject(actor, project) {
		return nil, util.NewForbidden("not authorized to modify this project's team")
	}

	removed, err := s.projects.RemoveTeamMember(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, util.NewValidationError("user is not on the team", map[string]any{
			"field": "member",
			"id":    userID,
		})
	}

	project, err = s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, asNotFound(err, "project")
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventProjRemoveMember,
		EntityID: project.ID,
		Actor:    eventActor(actor),
		Payload: events.ProjectPayload{
			ProjectID: project.ID,
			Name:      project.Name,
			ManagerID: project.ManagerID,
			MemberID:  &userID,
		},
	})
	return project, nil
}
