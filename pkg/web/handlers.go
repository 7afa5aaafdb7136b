// Package web provides the HTTP surface of the workflow bridge.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/dukex/flowbridge/pkg/analyzer"
	"github.com/dukex/flowbridge/pkg/engine"
	"github.com/dukex/flowbridge/pkg/models"
	"github.com/dukex/flowbridge/pkg/webhook"
)

const (
	defaultConversationLimit = 20
	maxConversationLimit     = 100
	insightExecutionLimit    = 50
)

// EngineGateway is the read side of the engine client the handlers need.
type EngineGateway interface {
	GetWorkflow(ctx context.Context, id string) (*models.Workflow, error)
	GetExecutions(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error)
}

// ExecutionRunner drives workflow runs.
type ExecutionRunner interface {
	Execute(ctx context.Context, req *models.ExecuteRequest) (*models.ExecutionResult, error)
	Stop(ctx context.Context, executionID string) (bool, error)
}

// MonitoringService produces live monitoring snapshots.
type MonitoringService interface {
	Snapshot(ctx context.Context, workflowID string) (*models.LiveMonitoring, error)
}

// ConversationService rebuilds conversation turns from executions.
type ConversationService interface {
	Reconstruct(ctx context.Context, executions []*models.Execution) []models.ConversationTurn
}

type APIHandlers struct {
	runner        ExecutionRunner
	engine        EngineGateway
	monitor       MonitoringService
	conversations ConversationService
	validator     *validator.Validate
	logger        *slog.Logger
}

func NewAPIHandlers(
	runner ExecutionRunner,
	engineGateway EngineGateway,
	monitor MonitoringService,
	conversations ConversationService,
	validate *validator.Validate,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		runner:        runner,
		engine:        engineGateway,
		monitor:       monitor,
		conversations: conversations,
		validator:     validate,
		logger:        logger.With("module", "web"),
	}
}

// ExecuteWorkflowRequest is the body of POST /workflows/:id/execute.
type ExecuteWorkflowRequest struct {
	ExecutionType models.ExecutionType `json:"execution_type" validate:"required,oneof=manual webhook test"`
	Payload       map[string]any       `json:"payload,omitempty"`
	TriggerNodeID string               `json:"trigger_node_id,omitempty"`
}

func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req ExecuteWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.runner.Execute(c.Context(), &models.ExecuteRequest{
		WorkflowID:    id,
		ExecutionType: req.ExecutionType,
		Payload:       req.Payload,
		TriggerNodeID: req.TriggerNodeID,
	})
	if err != nil {
		// The result still carries the message and duration so operators can
		// tell an unreachable engine from a rejected workflow.
		return c.Status(statusForError(err)).JSON(result)
	}

	return c.JSON(result)
}

func (h *APIHandlers) StopExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	stopped, err := h.runner.Stop(c.Context(), id)
	if err != nil {
		return handleBridgeError(c, err)
	}

	return c.JSON(fiber.Map{"execution_id": id, "stopped": stopped})
}

func (h *APIHandlers) GetWorkflowInsight(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.engine.GetWorkflow(c.Context(), id)
	if err != nil {
		return handleBridgeError(c, err)
	}

	executions, err := h.engine.GetExecutions(c.Context(), id, insightExecutionLimit)
	if err != nil {
		return handleBridgeError(c, err)
	}

	return c.JSON(analyzer.Analyze(workflow, executions))
}

func (h *APIHandlers) GetWorkflowMonitoring(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	snapshot, err := h.monitor.Snapshot(c.Context(), id)
	if err != nil {
		return handleBridgeError(c, err)
	}

	return c.JSON(snapshot)
}

func (h *APIHandlers) GetWorkflowConversation(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	limit := defaultConversationLimit

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > maxConversationLimit {
			return badRequest(c, "limit must be an integer between 1 and "+strconv.Itoa(maxConversationLimit))
		}

		limit = parsed
	}

	executions, err := h.engine.GetExecutions(c.Context(), id, limit)
	if err != nil {
		return handleBridgeError(c, err)
	}

	turns := h.conversations.Reconstruct(c.Context(), executions)

	return c.JSON(fiber.Map{
		"workflow_id": id,
		"turns":       turns,
	})
}

func (h *APIHandlers) GetWorkflowScenarios(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.engine.GetWorkflow(c.Context(), id)
	if err != nil {
		return handleBridgeError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflow_id": id,
		"scenarios":   analyzer.GenerateTestScenarios(workflow),
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status":    "healthy",
		"message":   "Flowbridge API is healthy",
		"timestamp": time.Now().UTC(),
	})
}

func statusForError(err error) int {
	switch {
	case webhook.IsNoTriggerFound(err):
		return fiber.StatusUnprocessableEntity
	case webhook.IsWebhookNotFound(err), engine.IsNotFound(err):
		return fiber.StatusNotFound
	default:
		if engineErr, ok := engine.AsEngineError(err); ok && engineErr.Status >= 400 && engineErr.Status < 500 {
			return engineErr.Status
		}

		return fiber.StatusBadGateway
	}
}
