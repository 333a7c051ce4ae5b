package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/taskpulse/internal/domain"
	"github.com/spec-kit/taskpulse/internal/events"
	"github.com/spec-kit/taskpulse/pkg/util"
)

func projectDates() (time.Time, time.Time) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 6, 0)
}

func TestProjectCreate(t *testing.T) {
	env := newTestEnv()
	svc := env.projectService()
	ctx := context.Background()

	managerUser := env.store.addUser(domain.User{Role: domain.RoleManager})
	memberUser := env.store.addUser(domain.User{Role: domain.RoleEmployee})
	dept := env.store.addDepartment(domain.Department{Name: "Engineering"})
	start, end := projectDates()

	project, err := svc.Create(ctx, actorFor(managerUser), ProjectCreateInput{
		Name:         "Apollo",
		StartDate:    start,
		EndDate:      end,
		ManagerID:    managerUser.ID,
		TeamIDs:      []string{memberUser.ID},
		DepartmentID: dept.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusPlanning, project.Status)
	assert.Equal(t, domain.PriorityMedium, project.Priority)

	published := env.dispatcher.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventProjCreate, published[0].Type)
}

func TestProjectCreateEmployeeDenied(t *testing.T) {
	env := newTestEnv()
	svc := env.projectService()

	employeeUser := env.store.addUser(domain.User{Role: domain.RoleEmployee})
	dept := env.store.addDepartment(domain.Department{Name: "Engineering"})
	start, end := projectDates()

	_, err := svc.Create(context.Background(), actorFor(employeeUser), ProjectCreateInput{
		Name:         "Apollo",
		StartDate:    start,
		EndDate:      end,
		ManagerID:    employeeUser.ID,
		DepartmentID: dept.ID,
	})
	assert.True(t, util.IsCode(err, "FORBIDDEN"))
	assert.Empty(t, env.store.projects)
}

func TestProjectCreateUnknownManagerLeavesStoreUnchanged(t *testing.T) {
	env := newTestEnv()
	svc := env.projectService()

	adminUser := env.store.addUser(domain.User{Role: domain.RoleAdmin})
	dept := env.store.addDepartment(domain.Department{Name: "Engineering"})
	start, end := projectDates()

	_, err := svc.Create(context.Background(), actorFor(adminUser), ProjectCreateInput{
		Name:         "Apollo",
		StartDate:    start,
		EndDate:      end,
		ManagerID:    "missing",
		DepartmentID: dept.ID,
	})
	assert.True(t, util.IsCode(err, "VALIDATION_FAILED"))
	assert.Empty(t, env.store.projects)
	assert.Empty(t, env.dispatcher.published())
}

func TestProjectCreateRejectsBadDates(t *testing.T) {
	env := newTestEnv()
	svc := env.projectService()

	adminUser := env.store.addUser(domain.User{Role: domain.RoleAdmin})
	dept := env.store.addDepartment(domain.Department{Name: "Engineering"})
	start, _ := projectDates()

	_, err := svc.Create(context.Background(), actorFor(adminUser), ProjectCreateInput{
		Name:         "Apollo",
		StartDate:    start,
		EndDate:      start,
		ManagerID:    adminUser.ID,
		DepartmentID: dept.ID,
	})
	assert.True(t, util.IsCode(err, "VALIDATION_FAILED"))
}

func TestProjectListScoping(t *testing.T) {
	env := newTestEnv()
	svc := env.projectService()
	ctx := context.Background()

	adminUser := env.store.addUser(domain.User{Role: domain.RoleAdmin})
	managerUser := env.store.addUser(domain.User{Role: domain.RoleManager})
	memberUser := env.store.addUser(domain.User{Role: domain.RoleEmployee})
	outsider := env.store.addUser(domain.User{Role: domain.RoleEmployee})

	start, end := projectDates()
	env.store.addProject(domain.Project{
		Name: "Apollo", ManagerID: managerUser.ID, TeamIDs: []string{memberUser.ID},
		StartDate: start, EndDate: end, Status: domain.ProjectStatusActive,
	})
	env.store.addProject(domain.Project{
		Name: "Borealis", ManagerID: adminUser.ID,
		StartDate: start, EndDate: end, Status: domain.ProjectStatusPlanning,
	})

	all, err := svc.List(ctx, actorFor(adminUser), ProjectListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	managed, err := svc.List(ctx, actorFor(managerUser), ProjectListFilter{})
	require.NoError(t, err)
	require.Len(t, managed, 1)
	assert.Equal(t, "Apollo", managed[0].Name)

	visible, err := svc.List(ctx, actorFor(memberUser), ProjectListFilter{})
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	none, err := svc.List(ctx, actorFor(outsider), ProjectListFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)

	status := domain.ProjectStatusActive
	active, err := svc.List(ctx, actorFor(adminUser), ProjectListFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Apollo", active[0].Name)
}

func TestProjectUpdateOnlyOwnManager(t *testing.T) {
	env := newTestEnv()
	svc := env.projectService()
	ctx := context.Background()

	managerUser := env.store.addUser(domain.User{Role: domain.RoleManager})
	otherManager := env.store.addUser(domain.User{Role: domain.RoleManager})
	start, end := projectDates()
	project := env.store.addProject(domain.Project{
		Name: "Apollo", ManagerID: managerUser.ID, StartDate: start, EndDate: end,
	})

	_, err := svc.Update(ctx, actorFor(otherManager), project.ID, ProjectUpdateInput{Name: strPtr("Hijacked")})
	assert.True(t, util.IsCode(err, "FORBIDDEN"))

	updated, err := svc.Update(ctx, actorFor(managerUser), project.ID, ProjectUpdateInput{Name: strPtr("Apollo 2")})
	require.NoError(t, err)
	assert.Equal(t, "Apollo 2", updated.Name)
}

func TestProjectUpdateDateInvariantAcrossPartialUpdate(t *testing.T) {
	env := newTestEnv()
	svc := env.projectService()

	adminUser := env.store.addUser(domain.User{Role: domain.RoleAdmin})
	start, end := projectDates()
	project := env.store.addProject(domain.Project{
		Name: "Apollo", ManagerID: adminUser.ID, StartDate: start, EndDate: end,
	})

	// moving only the end date before the stored start must fail
	bad := start.AddDate(0, 0, -1)
	_, err := svc.Update(context.Background(), actorFor(adminUser), project.ID, ProjectUpdateInput{EndDate: &bad})
	assert.True(t, util.IsCode(err, "VALIDATION_FAILED"))
}

func TestProjectTeamMembership(t *testing.T) {
	env := newTestEnv()
	svc := env.projectService()
	ctx := context.Background()

	managerUser := env.store.addUser(domain.User{Role: domain.RoleManager})
	memberUser := env.store.addUser(domain.User{Role: domain.RoleEmployee})
	start, end := projectDates()
	project := env.store.addProject(domain.Project{
		Name: "Apollo", ManagerID: managerUser.ID, StartDate: start, EndDate: end,
	})

	updated, err := svc.AddTeamMember(ctx, actorFor(managerUser), project.ID, memberUser.ID)
	require.NoError(t, err)
	assert.True(t, updated.HasTeamMember(memberUser.ID))

	// duplicate add must fail and leave the set unchanged
	_, err = svc.AddTeamMember(ctx, actorFor(managerUser), project.ID, memberUser.ID)
	assert.True(t, util.IsCode(err, "VALIDATION_FAILED"))
	stored, _ := env.projects.GetByID(ctx, project.ID)
	assert.Equal(t, []string{memberUser.ID}, stored.TeamIDs)

	updated, err = svc.RemoveTeamMember(ctx, actorFor(managerUser), project.ID, memberUser.ID)
	require.NoError(t, err)
	assert.False(t, updated.HasTeamMember(memberUser.ID))

	_, err = svc.RemoveTeamMember(ctx, actorFor(managerUser), project.ID, memberUser.ID)
	assert.True(t, util.IsCode(err, "VALIDATION_FAILED"))

	published := env.dispatcher.published()
	require.Len(t, published, 2)
	assert.Equal(t, events.EventProjAddMember, published[0].Type)
	assert.Equal(t, events.EventProjRemoveMember, published[1].Type)
}

func TestProjectGetVisibility(t *testing.T) {
	env := newTestEnv()
	svc := env.projectService()
	ctx := context.Background()

	managerUser := env.store.addUser(domain.User{Role: domain.RoleManager})
	outsider := env.store.addUser(domain.User{Role: domain.RoleEmployee})
	start, end := projectDates()
	project := env.store.addProject(domain.Project{
		Name: "Apollo", ManagerID: managerUser.ID, StartDate: start, EndDate: end,
	})

	_, err := svc.Get(ctx, actorFor(outsider), project.ID)
	assert.True(t, util.IsCode(err, "FORBIDDEN"))

	got, err := svc.Get(ctx, actorFor(managerUser), project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, got.ID)
}
