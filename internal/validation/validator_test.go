package validation

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/taskpulse/internal/domain"
	"github.com/spec-kit/taskpulse/internal/repository"
	"github.com/spec-kit/taskpulse/pkg/util"
)

type stubUserRepo struct{ users map[string]domain.User }

func (r *stubUserRepo) Create(context.Context, *domain.User) error { return nil }
func (r *stubUserRepo) Update(context.Context, *domain.User) error { return nil }
func (r *stubUserRepo) Delete(context.Context, string) error       { return nil }
func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, pgx.ErrNoRows
}
func (r *stubUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *stubUserRepo) ListWithFilter(context.Context, repository.UserFilter) ([]domain.User, error) {
	return nil, nil
}
func (r *stubUserRepo) ListByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	var out []domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type stubDepartmentRepo struct{ departments map[string]domain.Department }

func (r *stubDepartmentRepo) Create(context.Context, *domain.Department) error { return nil }
func (r *stubDepartmentRepo) Update(context.Context, *domain.Department) error { return nil }
func (r *stubDepartmentRepo) Delete(context.Context, string) error             { return nil }
func (r *stubDepartmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	if d, ok := r.departments[id]; ok {
		return &d, nil
	}
	return nil, pgx.ErrNoRows
}
func (r *stubDepartmentRepo) List(context.Context) ([]domain.Department, error) { return nil, nil }
func (r *stubDepartmentRepo) AddEmployee(context.Context, string, string) (bool, error) {
	return false, nil
}
func (r *stubDepartmentRepo) RemoveEmployee(context.Context, string, string) (bool, error) {
	return false, nil
}

type stubProjectRepo struct{ projects map[string]domain.Project }

func (r *stubProjectRepo) Create(context.Context, *domain.Project) error { return nil }
func (r *stubProjectRepo) Update(context.Context, *domain.Project) error { return nil }
func (r *stubProjectRepo) Delete(context.Context, string) error          { return nil }
func (r *stubProjectRepo) GetByID(_ context.Context, id string) (*domain.Project, error) {
	if p, ok := r.projects[id]; ok {
		return &p, nil
	}
	return nil, pgx.ErrNoRows
}
func (r *stubProjectRepo) ListWithFilter(context.Context, repository.ProjectFilter) ([]domain.Project, error) {
	return nil, nil
}
func (r *stubProjectRepo) AddTeamMember(context.Context, string, string) (bool, error) {
	return false, nil
}
func (r *stubProjectRepo) RemoveTeamMember(context.Context, string, string) (bool, error) {
	return false, nil
}

type stubTaskRepo struct{ tasks map[string]domain.Task }

func (r *stubTaskRepo) Create(context.Context, *domain.Task) error { return nil }
func (r *stubTaskRepo) Update(context.Context, *domain.Task) error { return nil }
func (r *stubTaskRepo) Delete(context.Context, string) error       { return nil }
func (r *stubTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	if t, ok := r.tasks[id]; ok {
		return &t, nil
	}
	return nil, pgx.ErrNoRows
}
func (r *stubTaskRepo) ListWithFilter(context.Context, repository.TaskFilter) ([]domain.Task, error) {
	return nil, nil
}
func (r *stubTaskRepo) UpdateStatus(context.Context, string, domain.TaskStatus) error { return nil }
func (r *stubTaskRepo) ListByIDs(_ context.Context, ids []string) ([]domain.Task, error) {
	var out []domain.Task
	for _, id := range ids {
		if t, ok := r.tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func newStubValidator(tasks map[string]domain.Task) *ReferenceValidator {
	return New(
		&stubUserRepo{users: map[string]domain.User{"u1": {ID: "u1"}}},
		&stubDepartmentRepo{departments: map[string]domain.Department{"d1": {ID: "d1"}}},
		&stubProjectRepo{projects: map[string]domain.Project{"p1": {ID: "p1"}}},
		&stubTaskRepo{tasks: tasks},
	)
}

func TestReferenceChecks(t *testing.T) {
	v := newStubValidator(nil)
	ctx := context.Background()

	assert.NoError(t, v.UserExists(ctx, "manager", "u1"))
	err := v.UserExists(ctx, "manager", "missing")
	assert.True(t, util.IsCode(err, "VALIDATION_FAILED"))

	assert.NoError(t, v.DepartmentExists(ctx, "department", "d1"))
	assert.Error(t, v.DepartmentExists(ctx, "department", "missing"))

	assert.NoError(t, v.ProjectExists(ctx, "project", "p1"))
	assert.Error(t, v.ProjectExists(ctx, "project", "missing"))
}

func TestUsersExistNamesMissingID(t *testing.T) {
	v := newStubValidator(nil)

	err := v.UsersExist(context.Background(), "team", []string{"u1", "ghost"})
	require.Error(t, err)
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ghost", domainErr.Details["id"])
}

func TestProjectDates(t *testing.T) {
	v := newStubValidator(nil)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, v.ProjectDates(start, start.AddDate(0, 0, 1)))
	assert.Error(t, v.ProjectDates(start, start))
	assert.Error(t, v.ProjectDates(start, start.AddDate(0, 0, -1)))
}

func TestTaskDependencies(t *testing.T) {
	tasks := map[string]domain.Task{
		"a": {ID: "a", DependencyIDs: []string{"b"}},
		"b": {ID: "b", DependencyIDs: []string{"c"}},
		"c": {ID: "c"},
	}
	v := newStubValidator(tasks)
	ctx := context.Background()

	assert.NoError(t, v.TaskDependencies(ctx, "", []string{"a", "b"}))
	assert.Error(t, v.TaskDependencies(ctx, "", []string{"ghost"}))

	// self reference
	assert.Error(t, v.TaskDependencies(ctx, "a", []string{"a"}))

	// c -> a would close the loop a -> b -> c
	err := v.TaskDependencies(ctx, "c", []string{"a"})
	assert.True(t, util.IsCode(err, "VALIDATION_FAILED"))

	// a new edge that reaches no cycle is fine
	assert.NoError(t, v.TaskDependencies(ctx, "a", []string{"c"}))
}
