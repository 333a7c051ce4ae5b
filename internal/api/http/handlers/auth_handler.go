package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/taskpulse/internal/api/dto"
	"github.com/spec-kit/taskpulse/internal/auth"
	"github.com/spec-kit/taskpulse/internal/service"
	apperrors "github.com/spec-kit/taskpulse/pkg/util"
	"github.com/spec-kit/taskpulse/pkg/validation"
)

// AuthHandler manages registration, login, and the current-user endpoint.
type AuthHandler struct {
	service  *service.AuthService
	validate *validation.RequestValidator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, validate *validation.RequestValidator) *AuthHandler {
	return &AuthHandler{service: authService, validate: validate}
}

// Register POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	user, token, expiresAt, err := h.service.Register(c.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Matricule:   req.Matricule,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(user),
	}})
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	user, token, expiresAt, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(user),
	}})
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(principal.User)})
}
