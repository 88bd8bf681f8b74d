package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gmsas95/arogya-cli/internal/config"
	"github.com/gmsas95/arogya-cli/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func New(cfg *config.Config, deps Deps, version string, logger *zap.Logger) *Server {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Default()
	}
	app := fiber.New(fiber.Config{
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           120 * time.Second,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	s := &Server{
		app:     app,
		config:  cfg,
		deps:    deps,
		logger:  logger,
		version: version,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Use(recover.New())
	s.app.Use(s.requestLogger())
	s.app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	s.app.Get("/api/health", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(s.deps.Metrics.Handler()))
	s.app.Get("/api/metrics", s.handleMetricsJSON)

	api := s.app.Group("/api")

	if s.deps.Notices != nil {
		api.Get("/vaccinations/upcoming", s.handleUpcoming)
	}

	if s.deps.Plans != nil {
		api.Get("/plans", s.handleListPlans)
		api.Post("/plans", s.handleCreatePlan)
		api.Get("/plans/stats", s.handlePlanStats)
		api.Post("/plans/process", s.handleProcessPlans)
		api.Get("/plans/:id", s.handleGetPlan)
		api.Delete("/plans/:id", s.handleDeletePlan)
		api.Post("/plans/:id/toggle", s.handleTogglePlan)
	}

	if s.deps.Jobs != nil {
		api.Get("/reminders", s.handleListReminders)
	}
	if s.deps.History != nil {
		api.Get("/reminders/history", s.handleReminderHistory)
	}
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Server.Address, s.config.Server.Port)
}

func (s *Server) Start() error {
	s.logger.Info("API listening", zap.String("addr", s.Addr()))
	return s.app.Listen(s.Addr())
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(ctx)
}
