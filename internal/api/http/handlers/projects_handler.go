package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/taskpulse/internal/api/dto"
	"github.com/spec-kit/taskpulse/internal/auth"
	"github.com/spec-kit/taskpulse/internal/domain"
	"github.com/spec-kit/taskpulse/internal/service"
	apperrors "github.com/spec-kit/taskpulse/pkg/util"
	"github.com/spec-kit/taskpulse/pkg/validation"
)

// ProjectsHandler manages project endpoints.
type ProjectsHandler struct {
	service  *service.ProjectService
	validate *validation.RequestValidator
}

// NewProjectsHandler constructs handler.
func NewProjectsHandler(projectService *service.ProjectService, validate *validation.RequestValidator) *ProjectsHandler {
	return &ProjectsHandler{service: projectService, validate: validate}
}

// List GET /projects.
func (h *ProjectsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	filter := parseProjectQuery(c)
	projects, err := h.service.List(c.Context(), principal.Actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, dto.NewProjectResponse(&projects[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /projects/:id.
func (h *ProjectsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	project, err := h.service.Get(c.Context(), principal.Actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProjectResponse(project)})
}

// Create POST /projects.
func (h *ProjectsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	project, err := h.service.Create(c.Context(), principal.Actor, service.ProjectCreateInput{
		Name:         req.Name,
		Description:  req.Description,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		ManagerID:    req.ManagerID,
		TeamIDs:      req.TeamIDs,
		DepartmentID: req.DepartmentID,
		Priority:     req.Priority,
		Budget:       req.Budget,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewProjectResponse(project)})
}

// Update PUT /projects/:id.
func (h *ProjectsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	project, err := h.service.Update(c.Context(), principal.Actor, c.Params("id"), service.ProjectUpdateInput{
		Name:         req.Name,
		Description:  req.Description,
		Status:       req.Status,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		ManagerID:    req.ManagerID,
		TeamIDs:      req.TeamIDs,
		DepartmentID: req.DepartmentID,
		Priority:     req.Priority,
		Budget:       req.Budget,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProjectResponse(project)})
}

// Delete DELETE /projects/:id.
func (h *ProjectsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.Delete(c.Context(), principal.Actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddTeamMember POST /projects/:id/team.
func (h *ProjectsHandler) AddTeamMember(c *fiber.Ctx) error {
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

	project, err := h.service.AddTeamMember(c.Context(), principal.Actor, c.Params("id"), req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProjectResponse(project)})
}

// RemoveTeamMember DELETE /projects/:id/team/:userId.
func (h *ProjectsHandler) RemoveTeamMember(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	project, err := h.service.RemoveTeamMember(c.Context(), principal.Actor, c.Params("id"), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProjectResponse(project)})
}

func parseProjectQuery(c *fiber.Ctx) service.ProjectListFilter {
	filter := service.ProjectListFilter{}
	if v := c.Query("department_id"); v != "" {
		filter.DepartmentID = &v
	}
	if v := c.Query("status"); v != "" {
		status := domain.ProjectStatus(v)
		filter.Status = &status
	}
	filter.Limit, _ = strconv.Atoi(c.Query("limit"))
	filter.Offset, _ = strconv.Atoi(c.Query("offset"))
	return filter
}
