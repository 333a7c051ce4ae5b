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

// TaskService orchestrates task mutations.
type TaskService struct {
	tasks      repository.TaskRepository
	validator  *validation.ReferenceValidator
	dispatcher events.Dispatcher
}

// TaskDependencies bundles requirements for the task service.
type TaskDependencies struct {
	TaskRepo   repository.TaskRepository
	Validator  *validation.ReferenceValidator
	Dispatcher events.Dispatcher
}

// NewTaskService constructs the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	return &TaskService{
		tasks:      deps.TaskRepo,
		validator:  deps.Validator,
		dispatcher: deps.Dispatcher,
	}
}

// TaskCreateInput describes task creation. CreatedBy is always the acting
// user, never caller-supplied.
type TaskCreateInput struct {
	Title         string
	Description   string
	Priority      domain.Priority
	Status        domain.TaskStatus
	DueDate       time.Time
	AssignedTo    string
	ProjectID     *string
	DependencyIDs []string
	Attachments   []string
}

// TaskUpdateInput carries a partial update; nil fields are untouched.
type TaskUpdateInput struct {
	Title         *string
	Description   *string
	Priority      *domain.Priority
	Status        *domain.TaskStatus
	DueDate       *time.Time
	AssignedTo    *string
	ProjectID     *string
	DependencyIDs []string
	Attachments   []string
}

// TaskListFilter carries the supported query filters; visibility scoping is
// applied on top server-side.
type TaskListFilter struct {
	ProjectID  *string
	AssignedTo *string
	Status     *domain.TaskStatus
	Limit      int
	Offset     int
}

// List returns tasks visible to the actor: all for admins, otherwise only
// tasks where the actor is assignee or creator.
func (s *TaskService) List(ctx context.Context, actor domain.Actor, filter TaskListFilter) ([]domain.Task, error) {
	repoFilter := repository.TaskFilter{
		ProjectID:  filter.ProjectID,
		AssignedTo: filter.AssignedTo,
		Status:     filter.Status,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	scope := authz.ListTasksScope(actor)
	if !scope.All {
		repoFilter.ParticipantID = scope.ParticipantID
	}
	return s.tasks.ListWithFilter(ctx, repoFilter)
}

// Get fetches a single task the actor may read.
func (s *TaskService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "task")
	}
	if !authz.CanReadTask(actor, task) {
		return nil, util.NewForbidden("not authorized to view this task")
	}
	return task, nil
}

// Create adds a task. Admin or manager role. All references (assignee,
// project, dependencies) must resolve before the write.
func (s *TaskService) Create(ctx context.Context, actor domain.Actor, input TaskCreateInput) (*domain.Task, error) {
	if !authz.CanCreateTask(actor) {
		return nil, util.NewForbidden("only admins and managers can create tasks")
	}

	if err := s.validator.UserExists(ctx, "assignedTo", input.AssignedTo); err != nil {
		return nil, err
	}
	if input.ProjectID != nil {
		if err := s.validator.ProjectExists(ctx, "project", *input.ProjectID); err != nil {
			return nil, err
		}
	}
	if err := s.validator.TaskDependencies(ctx, "", input.DependencyIDs); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.TaskStatusTodo
	}
	if !status.Valid() {
		return nil, util.NewValidationError("invalid status", map[string]any{"field": "status"})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, util.NewValidationError("invalid priority", map[string]any{"field": "priority"})
	}

	task := &domain.Task{
		Title:         input.Title,
		Description:   input.Description,
		Priority:      priority,
		Status:        status,
		DueDate:       input.DueDate,
		AssignedTo:    input.AssignedTo,
		ProjectID:     input.ProjectID,
		DependencyIDs: input.DependencyIDs,
		Attachments:   input.Attachments,
		CreatedBy:     actor.ID,
	}
	if task.DependencyIDs == nil {
		task.DependencyIDs = []string{}
	}
	if task.Attachments == nil {
		task.Attachments = []string{}
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTaskCreate,
		EntityID: task.ID,
		Actor:    eventActor(actor),
		Payload:  taskPayload(task),
	})
	return task, nil
}

// Update applies a partial update: admin, assignee, or creator. Changed
// references are re-validated, including the dependency graph.
func (s *TaskService) Update(ctx context.Context, actor domain.Actor, id string, input TaskUpdateInput) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "task")
	}
	if !authz.CanModifyTask(actor, task) {
		return nil, util.NewForbidden("not authorized to update this task")
	}

	if input.AssignedTo != nil && *input.AssignedTo != task.AssignedTo {
		if err := s.validator.UserExists(ctx, "assignedTo", *input.AssignedTo); err != nil {
			return nil, err
		}
	}
	if input.ProjectID != nil {
		if err := s.validator.ProjectExists(ctx, "project", *input.ProjectID); err != nil {
			return nil, err
		}
	}
	if input.DependencyIDs != nil {
		if err := s.validator.TaskDependencies(ctx, task.ID, input.DependencyIDs); err != nil {
			return nil, err
		}
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, util.NewValidationError("invalid status", map[string]any{"field": "status"})
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, util.NewValidationError("invalid priority", map[string]any{"field": "priority"})
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}
	if input.AssignedTo != nil {
		task.AssignedTo = *input.AssignedTo
	}
	if input.ProjectID != nil {
		task.ProjectID = input.ProjectID
	}
	if input.DependencyIDs != nil {
		task.DependencyIDs = input.DependencyIDs
	}
	if input.Attachments != nil {
		task.Attachments = input.Attachments
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, asNotFound(err, "task")
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTaskUpdate,
		EntityID: task.ID,
		Actor:    eventActor(actor),
		Payload:  taskPayload(task),
	})
	return task, nil
}

// Delete removes a task: admin, assignee, or creator.
func (s *TaskService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return asNotFound(err, "task")
	}
	if !authz.CanModifyTask(actor, task) {
		return util.NewForbidden("not authorized to delete this task")
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return asNotFound(err, "task")
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTaskDelete,
		EntityID: task.ID,
		Actor:    eventActor(actor),
		Payload:  taskPayload(task),
	})
	return nil
}

// PatchStatus updates only the status field: admin or assignee. Creators
// who are not the assignee are denied here even though they may edit the
// task through Update.
func (s *TaskService) PatchStatus(ctx context.Context, actor domain.Actor, id string, status domain.TaskStatus) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "task")
	}
	if !authz.CanPatchTaskStatus(actor, task) {
		return nil, util.NewForbidden("only the assignee can change the task status")
	}
	if !status.Valid() {
		return nil, util.NewValidationError("invalid status", map[string]any{"field": "status"})
	}

	if err := s.tasks.UpdateStatus(ctx, id, status); err != nil {
		return nil, asNotFound(err, "task")
	}
	task.Status = status

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTaskStatusUpdate,
		EntityID: task.ID,
		Actor:    eventActor(actor),
		Payload:  taskPayload(task),
	})
	return task, nil
}

func taskPayload(task *domain.Task) events.TaskPayload {
	return events.TaskPayload{
		TaskID:     task.ID,
		Title:      task.Title,
		AssignedTo: task.AssignedTo,
		CreatedBy:  task.CreatedBy,
		Status:     task.Status,
	}
}
