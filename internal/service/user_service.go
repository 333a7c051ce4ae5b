package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/taskpulse/internal/auth"
	"github.com/spec-kit/taskpulse/internal/authz"
	"github.com/spec-kit/taskpulse/internal/domain"
	"github.com/spec-kit/taskpulse/internal/repository"
	"github.com/spec-kit/taskpulse/internal/validation"
	"github.com/spec-kit/taskpulse/pkg/util"
)

// UserService orchestrates account mutations: authorize against the
// pre-mutation state, validate references, then persist.
type UserService struct {
	users      repository.UserRepository
	validator  *validation.ReferenceValidator
	bcryptCost int
}

// UserDependencies bundles requirements for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Validator  *validation.ReferenceValidator
	BcryptCost int
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		validator:  deps.Validator,
		bcryptCost: deps.BcryptCost,
	}
}

// UserCreateInput describes admin-driven account creation.
type UserCreateInput struct {
	Email        string
	Password     string
	Name         string
	Role         domain.Role
	Matricule    string
	PhoneNumber  string
	DepartmentID *string
	Position     *string
}

// UserUpdateInput carries a partial update; nil fields are untouched.
type UserUpdateInput struct {
	Name         *string
	PhoneNumber  *string
	DepartmentID *string
	Position     *string
	Role         *domain.Role
}

// List returns users visible to the actor: everyone for admins, the own
// department for managers, only self for employees.
func (s *UserService) List(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	scope := authz.ListUsersScope(actor)
	filter := repository.UserFilter{}
	switch {
	case scope.All:
	case scope.DepartmentID != nil:
		filter.DepartmentID = scope.DepartmentID
	case scope.SelfID != nil:
		filter.ID = scope.SelfID
	default:
		// manager without a department sees nothing
		return []domain.User{}, nil
	}
	return s.users.ListWithFilter(ctx, filter)
}

// Get fetches a single user the actor may read.
func (s *UserService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "user")
	}
	if !authz.CanReadUser(actor, user) {
		return nil, util.NewForbidden("not authorized to view this user")
	}
	return user, nil
}

// Create adds an account. Admin only.
func (s *UserService) Create(ctx context.Context, actor domain.Actor, input UserCreateInput) (*domain.User, error) {
	if !authz.CanCreateUser(actor) {
		return nil, util.NewForbidden("only admins can create users")
	}

	role := input.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	if !role.Valid() {
		return nil, util.NewValidationError("invalid role", map[string]any{"field": "role"})
	}
	if input.DepartmentID != nil {
		if err := s.validator.DepartmentExists(ctx, "department", *input.DepartmentID); err != nil {
			return nil, err
		}
	}
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, util.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		Role:         role,
		Matricule:    input.Matricule,
		PhoneNumber:  input.PhoneNumber,
		DepartmentID: input.DepartmentID,
		Position:     input.Position,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update applies a partial update. Role changes are admin-only regardless
// of any other permission the actor holds on the target.
func (s *UserService) Update(ctx context.Context, actor domain.Actor, id string, input UserUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "user")
	}

	changesRole := input.Role != nil && *input.Role != user.Role
	if !authz.CanUpdateUser(actor, user, changesRole) {
		if changesRole && authz.CanUpdateUser(actor, user, false) {
			return nil, util.NewForbidden("only admins can change user roles")
		}
		return nil, util.NewForbidden("not authorized to update this user")
	}

	if input.Role != nil && !input.Role.Valid() {
		return nil, util.NewValidationError("invalid role", map[string]any{"field": "role"})
	}
	if input.DepartmentID != nil {
		if err := s.validator.DepartmentExists(ctx, "department", *input.DepartmentID); err != nil {
			return nil, err
		}
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = *input.PhoneNumber
	}
	if input.DepartmentID != nil {
		user.DepartmentID = input.DepartmentID
	}
	if input.Position != nil {
		user.Position = input.Position
	}
	if input.Role != nil {
		user.Role = *input.Role
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, asNotFound(err, "user")
	}
	return user, nil
}

// Delete removes an account. Admin only; refused with Conflict while the
// user still manages projects or holds task assignments.
func (s *UserService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if !authz.CanDeleteUser(actor) {
		return util.NewForbidden("only admins can delete users")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return asNotFound(err, "user")
	}
	return nil
}
