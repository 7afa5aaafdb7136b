// Package main provides the Flowbridge API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/dukex/flowbridge/pkg/conversation"
	"github.com/dukex/flowbridge/pkg/executor"
	"github.com/dukex/flowbridge/pkg/monitoring"
	"github.com/dukex/flowbridge/pkg/web"
)

type API struct {
	logger        *slog.Logger
	executor      *executor.Executor
	gateway       web.EngineGateway
	monitor       *monitoring.Service
	conversations *conversation.Reconstructor
	validate      *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	runner *executor.Executor,
	gateway web.EngineGateway,
	monitor *monitoring.Service,
	conversations *conversation.Reconstructor,
) *API {
	return &API{
		logger:        logger,
		executor:      runner,
		gateway:       gateway,
		monitor:       monitor,
		conversations: conversations,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.executor, a.gateway, a.monitor, a.conversations, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Flowbridge API")
	})

	w := app.Group("/workflows")
	w.Post("/:id/execute", handlers.ExecuteWorkflow)
	w.Get("/:id/insight", handlers.GetWorkflowInsight)
	w.Get("/:id/monitoring", handlers.GetWorkflowMonitoring)
	w.Get("/:id/conversation", handlers.GetWorkflowConversation)
	w.Get("/:id/scenarios", handlers.GetWorkflowScenarios)

	app.Post("/executions/:id/stop", handlers.StopExecution)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
