package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/taskpulse/internal/api/http/handlers"
	"github.com/spec-kit/taskpulse/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Departments    *handlers.DepartmentsHandler
	Projects       *handlers.ProjectsHandler
	Tasks          *handlers.TasksHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	users := api.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/", cfg.Users.List)
	users.Post("/", cfg.Users.Create)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)

	departments := api.Group("/departments", cfg.AuthMiddleware.Handle)
	departments.Get("/", cfg.Departments.List)
	departments.Post("/", cfg.Departments.Create)
	departments.Get("/:id", cfg.Departments.Get)
	departments.Put("/:id", cfg.Departments.Update)
	departments.Delete("/:id", cfg.Departments.Delete)
	departments.Post("/:id/employees", cfg.Departments.AddEmployee)
	departments.Delete("/:id/employees/:userId", cfg.Departments.RemoveEmployee)

	projects := api.Group("/projects", cfg.AuthMiddleware.Handle)
	projects.Get("/", cfg.Projects.List)
	projects.Post("/", cfg.Projects.Create)
	projects.Get("/:id", cfg.Projects.Get)
	projects.Put("/:id", cfg.Projects.Update)
	projects.Delete("/:id", cfg.Projects.Delete)
	projects.Post("/:id/team", cfg.Projects.AddTeamMember)
	projects.Delete("/:id/team/:userId", cfg.Projects.RemoveTeamMember)

	tasks := api.Group("/tasks", cfg.AuthMiddleware.Handle)
	tasks.Get("/", cfg.Tasks.List)
	tasks.Post("/", cfg.Tasks.Create)
	tasks.Get("/:id", cfg.Tasks.Get)
	tasks.Put("/:id", cfg.Tasks.Update)
	tasks.Delete("/:id", cfg.Tasks.Delete)
	tasks.Patch("/:id/status", cfg.Tasks.UpdateStatus)
}
