package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/taskpulse/internal/api/dto"
	"github.com/spec-kit/taskpulse/internal/auth"
	"github.com/spec-kit/taskpulse/internal/service"
	apperrors "github.com/spec-kit/taskpulse/pkg/util"
	"github.com/spec-kit/taskpulse/pkg/validation"
)

// UsersHandler manages user account endpoints.
type UsersHandler struct {
	service  *service.UserService
	validate *validation.RequestValidator
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService, validate *validation.RequestValidator) *UsersHandler {
	return &UsersHandler{service: userService, validate: validate}
}

// List GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	users, err := h.service.List(c.Context(), principal.Actor)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	user, err := h.service.Get(c.Context(), principal.Actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Create POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	user, err := h.service.Create(c.Context(), principal.Actor, service.UserCreateInput{
		Email:        req.Email,
		Password:     req.Password,
		Name:         req.Name,
		Role:         req.Role,
		Matricule:    req.Matricule,
		PhoneNumber:  req.PhoneNumber,
		DepartmentID: req.DepartmentID,
		Position:     req.Position,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Update PUT /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	user, err := h.service.Update(c.Context(), principal.Actor, c.Params("id"), service.UserUpdateInput{
		Name:         req.Name,
		PhoneNumber:  req.PhoneNumber,
		DepartmentID: req.DepartmentID,
		Position:     req.Position,
		Role:         req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Delete DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.Delete(c.Context(), principal.Actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
