// Package validation resolves foreign references and structural invariants
// before a mutation is committed. The validator holds explicit handles to
// the stores it reads; there is no ambient registry.
package validation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/taskpulse/internal/repository"
	"github.com/spec-kit/taskpulse/pkg/util"
)

// ReferenceValidator checks that every referenced entity exists and that
// cross-field invariants hold. All checks are reads; nothing is mutated.
type ReferenceValidator struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	projects    repository.ProjectRepository
	tasks       repository.TaskRepository
}

// New constructs a validator over the given stores.
func New(
	users repository.UserRepository,
	departments repository.DepartmentRepository,
	projects repository.ProjectRepository,
	tasks repository.TaskRepository,
) *ReferenceValidator {
	return &ReferenceValidator{
		users:       users,
		departments: departments,
		projects:    projects,
		tasks:       tasks,
	}
}

func danglingRef(field, id string) error {
	return util.NewValidationError(fmt.Sprintf("referenced %s not found", field), map[string]any{
		"field": field,
		"id":    id,
	})
}

// UserExists fails with a Validation error naming the field when the id
// does not resolve to a user.
func (v *ReferenceValidator) UserExists(ctx context.Context, field, id string) error {
	if _, err := v.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return danglingRef(field, id)
		}
		return err
	}
	return nil
}

// UsersExist verifies every id in the set resolves to a user.
func (v *ReferenceValidator) UsersExist(ctx context.Context, field string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := v.users.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) == len(dedupe(ids)) {
		return nil
	}
	present := make(map[string]struct{}, len(found))
	for _, u := range found {
		present[u.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			return danglingRef(field, id)
		}
	}
	return nil
}

// DepartmentExists fails with a Validation error when the id does not
// resolve to a department.
func (v *ReferenceValidator) DepartmentExists(ctx context.Context, field, id string) error {
	if _, err := v.departments.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return danglingRef(field, id)
		}
		return err
	}
	return nil
}

// ProjectExists fails with a Validation error when the id does not resolve
// to a project.
func (v *ReferenceValidator) ProjectExists(ctx context.Context, field, id string) error {
	if _, err := v.projects.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return danglingRef(field, id)
		}
		return err
	}
	return nil
}

// ProjectDates enforces endDate > startDate.
func (v *ReferenceValidator) ProjectDates(start, end time.Time) error {
	if !end.After(start) {
		return util.NewValidationError("endDate must be after startDate", map[string]any{
			"startDate": start,
			"endDate":   end,
		})
	}
	return nil
}

// TaskDependencies verifies every dependency id resolves to a task, rejects
// self-references, and rejects cycles through the stored dependency graph.
// Cycle rejection goes beyond what a purely reference-level check requires;
// taskID may be empty on creation, when the task cannot yet participate in
// a stored cycle.
func (v *ReferenceValidator) TaskDependencies(ctx context.Context, taskID string, deps []string) error {
	if len(deps) == 0 {
		return nil
	}
	for _, dep := range deps {
		if taskID != "" && dep == taskID {
			return util.NewValidationError("task cannot depend on itself", map[string]any{
				"field": "dependencies",
				"id":    dep,
			})
		}
	}
	found, err := v.tasks.ListByIDs(ctx, deps)
	if err != nil {
		return err
	}
	present := make(map[string][]string, len(found))
	for _, t := range found {
		present[t.ID] = t.DependencyIDs
	}
	for _, dep := range deps {
		if _, ok := present[dep]; !ok {
			return danglingRef("dependencies", dep)
		}
	}
	if taskID == "" {
		return nil
	}
	return v.checkDependencyCycle(ctx, taskID, deps, present)
}

// checkDependencyCycle walks the dependency graph breadth-first from the
// proposed dependencies looking for a path back to taskID.
func (v *ReferenceValidator) checkDependencyCycle(ctx context.Context, taskID string, deps []string, known map[string][]string) error {
	visited := make(map[string]struct{})
	frontier := append([]string{}, deps...)
	for len(frontier) > 0 {
		id := frontier[0]
		frontier = frontier[1:]
		if id == taskID {
			return util.NewValidationError("task dependencies form a cycle", map[string]any{
				"field": "dependencies",
			})
		}
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}

		next, ok := known[id]
		if !ok {
			task, err := v.tasks.GetByID(ctx, id)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					continue
				}
				return err
			}
			next = task.DependencyIDs
			known[id] = next
		}
		frontier = append(frontier, next...)
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
