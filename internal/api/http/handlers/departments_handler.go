package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/taskpulse/internal/api/dto"
	"github.com/spec-kit/taskpulse/internal/auth"
	"github.com/spec-kit/taskpulse/internal/service"
	apperrors "github.com/spec-kit/taskpulse/pkg/util"
	"github.com/spec-kit/taskpulse/pkg/validation"
)

// DepartmentsHandler manages department endpoints.
type DepartmentsHandler struct {
	service  *service.DepartmentService
	validate *validation.RequestValidator
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(departmentService *service.DepartmentService, validate *validation.RequestValidator) *DepartmentsHandler {
	return &DepartmentsHandler{service: departmentService, validate: validate}
}

// List GET /departments.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	departments, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.DepartmentResponse, 0, len(departments))
	for i := range departments {
		items = append(items, dto.NewDepartmentResponse(&departments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /departments/:id.
func (h *DepartmentsHandler) Get(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	dept, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDepartmentResponse(dept)})
}

// Create POST /departments.
func (h *DepartmentsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	dept, err := h.service.Create(c.Context(), principal.Actor, service.DepartmentCreateInput{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		ManagerID:   req.ManagerID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewDepartmentResponse(dept)})
}

// Update PUT /departments/:id.
func (h *DepartmentsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	dept, err := h.service.Update(c.Context(), principal.Actor, c.Params("id"), service.DepartmentUpdateInput{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		ManagerID:   req.ManagerID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDepartmentResponse(dept)})
}

// Delete DELETE /departments/:id.
func (h *DepartmentsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.Delete(c.Context(), principal.Actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddEmployee POST /departments/:id/employees.
func (h *DepartmentsHandler) AddEmployee(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.MembershipRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	dept, err := h.service.AddEmployee(c.Context(), principal.Actor, c.Params("id"), req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDepartmentResponse(dept)})
}

// RemoveEmployee DELETE /departments/:id/employees/:userId.
func (h *DepartmentsHandler) RemoveEmployee(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	dept, err := h.service.RemoveEmployee(c.Context(), principal.Actor, c.Params("id"), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDepartmentResponse(dept)})
}
