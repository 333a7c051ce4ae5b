package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/taskpulse/internal/api/http"
	"github.com/spec-kit/taskpulse/internal/api/http/handlers"
	"github.com/spec-kit/taskpulse/internal/auth"
	"github.com/spec-kit/taskpulse/internal/config"
	"github.com/spec-kit/taskpulse/internal/events"
	"github.com/spec-kit/taskpulse/internal/notify"
	"github.com/spec-kit/taskpulse/internal/observability"
	"github.com/spec-kit/taskpulse/internal/persistence"
	"github.com/spec-kit/taskpulse/internal/repository"
	"github.com/spec-kit/taskpulse/internal/service"
	refvalidation "github.com/spec-kit/taskpulse/internal/validation"
	"github.com/spec-kit/taskpulse/internal/worker"
	reqvalidation "github.com/spec-kit/taskpulse/pkg/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)

	refValidator := refvalidation.New(userRepo, departmentRepo, projectRepo, taskRepo)

	dispatcher := events.NewQueueDispatcher(cfg.Notification.QueueSize, logger)
	defer dispatcher.Close()

	mailer := notify.NewMailer(cfg.Notification, logger)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   userRepo,
		Validator:  refValidator,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	departmentService := service.NewDepartmentService(service.DepartmentDependencies{
		DepartmentRepo: departmentRepo,
		Validator:      refValidator,
		Dispatcher:     dispatcher,
	})
	projectService := service.NewProjectService(service.ProjectDependencies{
		ProjectRepo: projectRepo,
		Validator:   refValidator,
		Dispatcher:  dispatcher,
	})
	taskService := service.NewTaskService(service.TaskDependencies{
		TaskRepo:   taskRepo,
		Validator:  refValidator,
		Dispatcher: dispatcher,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		UserRepo:   userRepo,
		Mailer:     mailer,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	requestValidator := reqvalidation.New()
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, requestValidator),
		Users:          handlers.NewUsersHandler(userService, requestValidator),
		Departments:    handlers.NewDepartmentsHandler(departmentService, requestValidator),
		Projects:       handlers.NewProjectsHandler(projectService, requestValidator),
		Tasks:          handlers.NewTasksHandler(taskService, requestValidator),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
