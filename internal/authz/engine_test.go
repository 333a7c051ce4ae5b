package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/taskpulse/internal/domain"
)

func strPtr(s string) *string { return &s }

func admin() domain.Actor {
	return domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
}

func manager(dept string) domain.Actor {
	return domain.Actor{ID: "manager-1", Role: domain.RoleManager, DepartmentID: strPtr(dept)}
}

func employee(dept string) domain.Actor {
	return domain.Actor{ID: "employee-1", Role: domain.RoleEmployee, DepartmentID: strPtr(dept)}
}

func TestListUsersScope(t *testing.T) {
	assert.True(t, ListUsersScope(admin()).All)

	scope := ListUsersScope(manager("d1"))
	assert.False(t, scope.All)
	require.NotNil(t, scope.DepartmentID)
	assert.Equal(t, "d1", *scope.DepartmentID)

	scope = ListUsersScope(employee("d1"))
	assert.False(t, scope.All)
	require.NotNil(t, scope.SelfID)
	assert.Equal(t, "employee-1", *scope.SelfID)
}

func TestCanReadUser(t *testing.T) {
	target := &domain.User{ID: "u-1", DepartmentID: strPtr("d1")}

	tests := []struct {
		name  string
		actor domain.Actor
		want  bool
	}{
		{"admin reads anyone", admin(), true},
		{"manager reads same department", manager("d1"), true},
		{"manager denied other department", manager("d2"), false},
		{"employee denied others", employee("d1"), false},
		{"self always allowed", domain.Actor{ID: "u-1", Role: domain.RoleEmployee}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanReadUser(tt.actor, target))
		})
	}
}

func TestCanUpdateUser(t *testing.T) {
	target := &domain.User{ID: "u-1", DepartmentID: strPtr("d1")}

	tests := []struct {
		name        string
		actor       domain.Actor
		changesRole bool
		want        bool
	}{
		{"admin updates anyone", admin(), false, true},
		{"admin changes roles", admin(), true, true},
		{"manager same department", manager("d1"), false, true},
		{"manager cannot change roles", manager("d1"), true, false},
		{"manager other department denied", manager("d2"), false, false},
		{"self update allowed", domain.Actor{ID: "u-1", Role: domain.RoleEmployee}, false, true},
		{"self role change denied", domain.Actor{ID: "u-1", Role: domain.RoleEmployee}, true, false},
		{"employee cannot update others", employee("d1"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanUpdateUser(tt.actor, target, tt.changesRole))
		})
	}
}

func TestUserCreateDeleteAdminOnly(t *testing.T) {
	assert.True(t, CanCreateUser(admin()))
	assert.False(t, CanCreateUser(manager("d1")))
	assert.False(t, CanCreateUser(employee("d1")))

	assert.True(t, CanDeleteUser(admin()))
	assert.False(t, CanDeleteUser(manager("d1")))
	assert.False(t, CanDeleteUser(employee("d1")))
}

func TestCanModifyDepartmentMembers(t *testing.T) {
	dept := &domain.Department{ID: "d1", ManagerID: strPtr("manager-1")}
	orphan := &domain.Department{ID: "d2"}

	tests := []struct {
		name  string
		actor domain.Actor
		dept  *domain.Department
		want  bool
	}{
		{"admin allowed", admin(), dept, true},
		{"own manager allowed", manager("d1"), dept, true},
		{"foreign manager denied", domain.Actor{ID: "manager-2", Role: domain.RoleManager}, dept, false},
		{"employee denied", employee("d1"), dept, false},
		{"no manager recorded", manager("d2"), orphan, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanModifyDepartmentMembers(tt.actor, tt.dept))
		})
	}
}

func TestProjectRules(t *testing.T) {
	project := &domain.Project{ID: "p1", ManagerID: "manager-1", TeamIDs: []string{"member-1"}}

	assert.True(t, CanReadProject(admin(), project))
	assert.True(t, CanReadProject(manager("d1"), project))
	assert.True(t, CanReadProject(domain.Actor{ID: "member-1", Role: domain.RoleEmployee}, project))
	assert.False(t, CanReadProject(domain.Actor{ID: "outsider", Role: domain.RoleEmployee}, project))

	assert.True(t, CanCreateProject(admin()))
	assert.True(t, CanCreateProject(manager("d1")))
	assert.False(t, CanCreateProject(employee("d1")))

	assert.True(t, CanModifyProject(admin(), project))
	assert.True(t, CanModifyProject(manager("d1"), project))
	assert.False(t, CanModifyProject(domain.Actor{ID: "manager-2", Role: domain.RoleManager}, project))
	// team membership alone grants no write access
	assert.False(t, CanModifyProject(domain.Actor{ID: "member-1", Role: domain.RoleEmployee}, project))
}

func TestTaskRules(t *testing.T) {
	task := &domain.Task{ID: "t1", AssignedTo: "assignee-1", CreatedBy: "creator-1"}

	assert.True(t, CanReadTask(admin(), task))
	assert.True(t, CanReadTask(domain.Actor{ID: "assignee-1", Role: domain.RoleEmployee}, task))
	assert.True(t, CanReadTask(domain.Actor{ID: "creator-1", Role: domain.RoleManager}, task))
	assert.False(t, CanReadTask(domain.Actor{ID: "outsider", Role: domain.RoleEmployee}, task))

	assert.True(t, CanCreateTask(admin()))
	assert.True(t, CanCreateTask(manager("d1")))
	assert.False(t, CanCreateTask(employee("d1")))

	assert.True(t, CanModifyTask(domain.Actor{ID: "creator-1", Role: domain.RoleManager}, task))
	assert.False(t, CanModifyTask(domain.Actor{ID: "outsider", Role: domain.RoleEmployee}, task))
}

func TestCanPatchTaskStatus(t *testing.T) {
	task := &domain.Task{ID: "t1", AssignedTo: "assignee-1", CreatedBy: "creator-1"}

	assert.True(t, CanPatchTaskStatus(admin(), task))
	assert.True(t, CanPatchTaskStatus(domain.Actor{ID: "assignee-1", Role: domain.RoleEmployee}, task))
	// the creator alone may edit the task but not flip its status
	assert.False(t, CanPatchTaskStatus(domain.Actor{ID: "creator-1", Role: domain.RoleManager}, task))
}

func TestDecisionsAreDeterministic(t *testing.T) {
	task := &domain.Task{ID: "t1", AssignedTo: "assignee-1", CreatedBy: "creator-1"}
	actor := domain.Actor{ID: "assignee-1", Role: domain.RoleEmployee}

	first := CanPatchTaskStatus(actor, task)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, CanPatchTaskStatus(actor, task))
	}
}
