package service

import (
	"context"

	"github.com/spec-kit/taskpulse/internal/authz"
	"github.com/spec-kit/taskpulse/internal/domain"
	"github.com/spec-kit/taskpulse/internal/events"
	"github.com/spec-kit/taskpulse/internal/repository"
	"github.com/spec-kit/taskpulse/internal/validation"
	"github.com/spec-kit/taskpulse/pkg/util"
)

// DepartmentService orchestrates department mutations.
type DepartmentService struct {
	departments repository.DepartmentRepository
	validator   *validation.ReferenceValidator
	dispatcher  events.Dispatcher
}

// DepartmentDependencies bundles requirements for the department service.
type DepartmentDependencies struct {
	DepartmentRepo repository.DepartmentRepository
	Validator      *validation.ReferenceValidator
	Dispatcher     events.Dispatcher
}

// NewDepartmentService constructs the service.
func NewDepartmentService(deps DepartmentDependencies) *DepartmentService {
	return &DepartmentService{
		departments: deps.DepartmentRepo,
		validator:   deps.Validator,
		dispatcher:  deps.Dispatcher,
	}
}

// DepartmentCreateInput describes department creation.
type DepartmentCreateInput struct {
	Name        string
	Type        string
	Description string
	ManagerID   *string
}

// DepartmentUpdateInput carries a partial update; nil fields are untouched.
type DepartmentUpdateInput struct {
	Name        *string
	Type        *string
	Description *string
	ManagerID   *string
}

// List returns all departments; readable by any authenticated actor.
func (s *DepartmentService) List(ctx context.Context) ([]domain.Department, error) {
	return s.departments.List(ctx)
}

// Get fetches a single department; readable by any authenticated actor.
func (s *DepartmentService) Get(ctx context.Context, id string) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "department")
	}
	return dept, nil
}

// Create adds a department. Admin only. The manager reference may be any
// existing user; no role restriction applies to the manager field.
func (s *DepartmentService) Create(ctx context.Context, actor domain.Actor, input DepartmentCreateInput) (*domain.Department, error) {
	if !authz.CanManageDepartment(actor) {
		return nil, util.NewForbidden("only admins can create departments")
	}
	if input.ManagerID != nil {
		if err := s.validator.UserExists(ctx, "manager", *input.ManagerID); err != nil {
			return nil, err
		}
	}

	dept := &domain.Department{
		Name:        input.Name,
		Type:        input.Type,
		Description: input.Description,
		ManagerID:   input.ManagerID,
		EmployeeIDs: []string{},
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventDeptCreate,
		EntityID: dept.ID,
		Actor:    eventActor(actor),
		Payload: events.DepartmentPayload{
			DepartmentID: dept.ID,
			Name:         dept.Name,
			ManagerID:    dept.ManagerID,
		},
	})
	return dept, nil
}

// Update applies a partial update. Admin only.
func (s *DepartmentService) Update(ctx context.Context, actor domain.Actor, id string, input DepartmentUpdateInput) (*domain.Department, error) {
	if !authz.CanManageDepartment(actor) {
		return nil, util.NewForbidden("only admins can update departments")
	}
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "department")
	}

	if input.ManagerID != nil {
		if err := s.validator.UserExists(ctx, "manager", *input.ManagerID); err != nil {
			return nil, err
		}
	}

	if input.Name != nil {
		dept.Name = *input.Name
	}
	if input.Type != nil {
		dept.Type = *input.Type
	}
	if input.Description != nil {
		dept.Description = *input.Description
	}
	if input.ManagerID != nil {
		dept.ManagerID = input.ManagerID
	}

	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, asNotFound(err, "department")
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventDeptUpdate,
		EntityID: dept.ID,
		Actor:    eventActor(actor),
		Payload: events.DepartmentPayload{
			DepartmentID: dept.ID,
			Name:         dept.Name,
			ManagerID:    dept.ManagerID,
		},
	})
	return dept, nil
}

// Delete removes a department. Admin only.
func (s *DepartmentService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if !authz.CanManageDepartment(actor) {
		return util.NewForbidden("only admins can delete departments")
	}
	if err := s.departments.Delete(ctx, id); err != nil {
		return asNotFound(err, "department")
	}
	return nil
}

// AddEmployee appends a user to the membership set: admin, or the manager
// recorded on this department. The append is atomic; adding an existing
// member fails without changing the set.
func (s *DepartmentService) AddEmployee(ctx context.Context, actor domain.Actor, deptID, userID string) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, deptID)
	if err != nil {
		return nil, asNotFound(err, "department")
	}
	if !authz.CanModifyDepartmentMembers(actor, dept) {
		return nil, util.NewForbidden("not authorized to modify this department's employees")
	}
	if err := s.validator.UserExists(ctx, "employee", userID); err != nil {
		return nil, err
	}

	added, err := s.departments.AddEmployee(ctx, deptID, userID)
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, util.NewValidationError("user is already a member of this department", map[string]any{
			"field": "employee",
			"id":    userID,
		})
	}

	dept, err = s.departments.GetByID(ctx, deptID)
	if err != nil {
		return nil, asNotFound(err, "department")
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventDeptAddEmployee,
		EntityID: dept.ID,
		Actor:    eventActor(actor),
		Payload: events.DepartmentPayload{
			DepartmentID: dept.ID,
			Name:         dept.Name,
			ManagerID:    dept.ManagerID,
			EmployeeID:   &userID,
		},
	})
	return dept, nil
}

// RemoveEmployee removes a user from the membership set; same permission
// rule as AddEmployee. Removing a non-member fails.
func (s *DepartmentService) RemoveEmployee(ctx context.Context, actor domain.Actor, deptID, userID string) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, deptID)
	if err != nil {
		return nil, asNotFound(err, "department")
	}
	if !authz.CanModifyDepartmentMembers(actor, dept) {
		return nil, util.NewForbidden("not authorized to modify this department's employees")
	}

	removed, err := s.departments.RemoveEmployee(ctx, deptID, userID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, util.NewValidationError("user is not a member of this department", map[string]any{
			"field": "employee",
			"id":    userID,
		})
	}

	dept, err = s.departments.GetByID(ctx, deptID)
	if err != nil {
		return nil, asNotFound(err, "department")
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventDeptRemoveEmployee,
		EntityID: dept.ID,
		Actor:    eventActor(actor),
		Payload: events.DepartmentPayload{
			DepartmentID: dept.ID,
			Name:         dept.Name,
			ManagerID:    dept.ManagerID,
			EmployeeID:   &userID,
		},
	})
	return dept, nil
}
