package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/taskpulse/internal/domain"
	"github.com/spec-kit/taskpulse/internal/events"
	"github.com/spec-kit/taskpulse/internal/notify"
	"github.com/spec-kit/taskpulse/internal/repository"
	"github.com/spec-kit/taskpulse/internal/validation"
)

// fakeStore backs every fake repository in these tests so cross-entity
// reference checks see one consistent world.
type fakeStore struct {
	mu          sync.Mutex
	seq         int
	users       map[string]domain.User
	departments map[string]domain.Department
	projects    map[string]domain.Project
	tasks       map[string]domain.Task
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[string]domain.User),
		departments: make(map[string]domain.Department),
		projects:    make(map[string]domain.Project),
		tasks:       make(map[string]domain.Task),
	}
}

func (s *fakeStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *fakeStore) addUser(u domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = s.nextID("user")
	}
	s.users[u.ID] = u
	return u
}

func (s *fakeStore) addDepartment(d domain.Department) domain.Department {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = s.nextID("dept")
	}
	s.departments[d.ID] = d
	return d
}

func (s *fakeStore) addProject(p domain.Project) domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = s.nextID("proj")
	}
	s.projects[p.ID] = p
	return p
}

func (s *fakeStore) addTask(t domain.Task) domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = s.nextID("task")
	}
	s.tasks[t.ID] = t
	return t
}

type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user.ID = r.store.nextID("user")
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.store.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.store.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.store.users, id)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, user := range r.store.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListWithFilter(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.User
	for _, user := range r.store.users {
		if filter.ID != nil && user.ID != *filter.ID {
			continue
		}
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.DepartmentID != nil {
			if user.DepartmentID == nil || *user.DepartmentID != *filter.DepartmentID {
				continue
			}
		}
		out = append(out, user)
	}
	return out, nil
}

func (r *fakeUserRepo) ListByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.User
	seen := map[string]struct{}{}
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if user, ok := r.store.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

type fakeDepartmentRepo struct{ store *fakeStore }

func (r *fakeDepartmentRepo) Create(_ context.Context, dept *domain.Department) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	dept.ID = r.store.nextID("dept")
	dept.CreatedAt = time.Now()
	dept.UpdatedAt = dept.CreatedAt
	if dept.EmployeeIDs == nil {
		dept.EmployeeIDs = []string{}
	}
	r.store.departments[dept.ID] = *dept
	return nil
}

func (r *fakeDepartmentRepo) Update(_ context.Context, dept *domain.Department) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.departments[dept.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	dept.EmployeeIDs = existing.EmployeeIDs
	r.store.departments[dept.ID] = *dept
	return nil
}

func (r *fakeDepartmentRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.departments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.store.departments, id)
	return nil
}

func (r *fakeDepartmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	dept, ok := r.store.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &dept, nil
}

func (r *fakeDepartmentRepo) List(_ context.Context) ([]domain.Department, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Department
	for _, dept := range r.store.departments {
		out = append(out, dept)
	}
	return out, nil
}

func (r *fakeDepartmentRepo) AddEmployee(_ context.Context, deptID, userID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	dept, ok := r.store.departments[deptID]
	if !ok {
		return false, pgx.ErrNoRows
	}
	for _, id := range dept.EmployeeIDs {
		if id == userID {
			return false, nil
		}
	}
	dept.EmployeeIDs = append(dept.EmployeeIDs, userID)
	r.store.departments[deptID] = dept
	return true, nil
}

func (r *fakeDepartmentRepo) RemoveEmployee(_ context.Context, deptID, userID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	dept, ok := r.store.departments[deptID]
	if !ok {
		return false, pgx.ErrNoRows
	}
	for i, id := range dept.EmployeeIDs {
		if id == userID {
			dept.EmployeeIDs = append(dept.EmployeeIDs[:i], dept.EmployeeIDs[i+1:]...)
			r.store.departments[deptID] = dept
			return true, nil
		}
	}
	return false, nil
}

type fakeProjectRepo struct{ store *fakeStore }

func (r *fakeProjectRepo) Create(_ context.Context, project *domain.Project) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	project.ID = r.store.nextID("proj")
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	r.store.projects[project.ID] = *project
	return nil
}

func (r *fakeProjectRepo) Update(_ context.Context, project *domain.Project) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.projects[project.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.store.projects[project.ID] = *project
	return nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.projects[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.store.projects, id)
	return nil
}

func (r *fakeProjectRepo) GetByID(_ context.Context, id string) (*domain.Project, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	project, ok := r.store.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &project, nil
}

func (r *fakeProjectRepo) ListWithFilter(_ context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Project
	for _, project := range r.store.projects {
		if filter.DepartmentID != nil && project.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.Status != nil && project.Status != *filter.Status {
			continue
		}
		if filter.MemberID != nil {
			if project.ManagerID != *filter.MemberID && !project.HasTeamMember(*filter.MemberID) {
				continue
			}
		}
		out = append(out, project)
	}
	return out, nil
}

func (r *fakeProjectRepo) AddTeamMember(_ context.Context, projectID, userID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	project, ok := r.store.projects[projectID]
	if !ok {
		return false, pgx.ErrNoRows
	}
	for _, id := range project.TeamIDs {
		if id == userID {
			return false, nil
		}
	}
	project.TeamIDs = append(project.TeamIDs, userID)
	r.store.projects[projectID] = project
	return true, nil
}

func (r *fakeProjectRepo) RemoveTeamMember(_ context.Context, projectID, userID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	project, ok := r.store.projects[projectID]
	if !ok {
		return false, pgx.ErrNoRows
	}
	for i, id := range project.TeamIDs {
		if id == userID {
			project.TeamIDs = append(project.TeamIDs[:i], project.TeamIDs[i+1:]...)
			r.store.projects[projectID] = project
			return true, nil
		}
	}
	return false, nil
}

type fakeTaskRepo struct{ store *fakeStore }

func (r *fakeTaskRepo) Create(_ context.Context, task *domain.Task) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	task.ID = r.store.nextID("task")
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	r.store.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *domain.Task) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tasks[task.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.store.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tasks[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.store.tasks, id)
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	task, ok := r.store.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &task, nil
}

func (r *fakeTaskRepo) ListWithFilter(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Task
	for _, task := range r.store.tasks {
		if filter.ProjectID != nil {
			if task.ProjectID == nil || *task.ProjectID != *filter.ProjectID {
				continue
			}
		}
		if filter.AssignedTo != nil && task.AssignedTo != *filter.AssignedTo {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		if filter.ParticipantID != nil {
			if task.AssignedTo != *filter.ParticipantID && task.CreatedBy != *filter.ParticipantID {
				continue
			}
		}
		out = append(out, task)
	}
	return out, nil
}

func (r *fakeTaskRepo) UpdateStatus(_ context.Context, id string, status domain.TaskStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	task, ok := r.store.tasks[id]
	if !ok {
		return pgx.ErrNoRows
	}
	task.Status = status
	r.store.tasks[id] = task
	return nil
}

func (r *fakeTaskRepo) ListByIDs(_ context.Context, ids []string) ([]domain.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Task
	seen := map[string]struct{}{}
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if task, ok := r.store.tasks[id]; ok {
			out = append(out, task)
		}
	}
	return out, nil
}

// captureDispatcher records published events synchronously.
type captureDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *captureDispatcher) Publish(_ context.Context, event events.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *captureDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *captureDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event{}, d.events...)
}

// captureMailer records sent messages.
type captureMailer struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (m *captureMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *captureMailer) sent() []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Message{}, m.messages...)
}

// testEnv bundles a consistent fake world with all services wired over it.
type testEnv struct {
	store       *fakeStore
	users       *fakeUserRepo
	departments *fakeDepartmentRepo
	projects    *fakeProjectRepo
	tasks       *fakeTaskRepo
	dispatcher  *captureDispatcher
	validator   *validation.ReferenceValidator
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	env := &testEnv{
		store:       store,
		users:       &fakeUserRepo{store: store},
		departments: &fakeDepartmentRepo{store: store},
		projects:    &fakeProjectRepo{store: store},
		tasks:       &fakeTaskRepo{store: store},
		dispatcher:  &captureDispatcher{},
	}
	env.validator = validation.New(env.users, env.departments, env.projects, env.tasks)
	return env
}

func (e *testEnv) userService() *UserService {
	return NewUserService(UserDependencies{
		UserRepo:   e.users,
		Validator:  e.validator,
		BcryptCost: 4,
	})
}

func (e *testEnv) departmentService() *DepartmentService {
	return NewDepartmentService(DepartmentDependencies{
		DepartmentRepo: e.departments,
		Validator:      e.validator,
		Dispatcher:     e.dispatcher,
	})
}

func (e *testEnv) projectService() *ProjectService {
	return NewProjectService(ProjectDependencies{
		ProjectRepo: e.projects,
		Validator:   e.validator,
		Dispatcher:  e.dispatcher,
	})
}

func (e *testEnv) taskService() *TaskService {
	return NewTaskService(TaskDependencies{
		TaskRepo:   e.tasks,
		Validator:  e.validator,
		Dispatcher: e.dispatcher,
	})
}

func actorFor(user domain.User) domain.Actor {
	return domain.Actor{ID: user.ID, Role: user.Role, DepartmentID: user.DepartmentID}
}

func strPtr(s string) *string { return &s }
