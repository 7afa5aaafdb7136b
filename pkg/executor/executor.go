// Package executor drives workflow runs against the engine and normalizes
// their outcomes.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukex/flowbridge/pkg/analyzer"
	"github.com/dukex/flowbridge/pkg/engine"
	"github.com/dukex/flowbridge/pkg/eventbus"
	"github.com/dukex/flowbridge/pkg/events"
	"github.com/dukex/flowbridge/pkg/models"
	"github.com/dukex/flowbridge/pkg/otelhelper"
	"github.com/dukex/flowbridge/pkg/persistence"
	"github.com/dukex/flowbridge/pkg/webhook"
)

var ErrUnsupportedExecutionType = errors.New("unsupported execution type")

// EngineAPI is the slice of the engine client the executor needs.
type EngineAPI interface {
	GetWorkflow(ctx context.Context, id string) (*models.Workflow, error)
	ExecuteManual(ctx context.Context, workflowID string, payload map[string]any) (*engine.ManualExecution, error)
	StopExecution(ctx context.Context, executionID string) (bool, error)
}

// WebhookExecutor runs a workflow through its webhook trigger.
type WebhookExecutor interface {
	Execute(ctx context.Context, workflow *models.Workflow, payload map[string]any, explicitNodeID string) (*webhook.Result, error)
}

type Executor struct {
	engine   EngineAPI
	webhooks WebhookExecutor
	guard    *SchemaGuard
	events   eventbus.EventPublisher
	audit    persistence.Persistence
	validate *validator.Validate
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewExecutor wires an executor. The guard, event publisher and audit store
// are optional; nil disables the corresponding behavior.
func NewExecutor(
	engineAPI EngineAPI,
	webhooks WebhookExecutor,
	guard *SchemaGuard,
	publisher eventbus.EventPublisher,
	audit persistence.Persistence,
	logger *slog.Logger,
) *Executor {
	return &Executor{
		engine:   engineAPI,
		webhooks: webhooks,
		guard:    guard,
		events:   publisher,
		audit:    audit,
		validate: validator.New(),
		logger:   logger.With("module", "executor"),
		tracer:   otel.Tracer("flowbridge/executor"),
		now:      time.Now,
	}
}

// Execute dispatches one workflow run by execution type and returns the
// normalized outcome. The returned error mirrors result.Error for manual and
// webhook runs; test runs always return a nil error, failures are reported
// through the result only.
func (e *Executor) Execute(ctx context.Context, req *models.ExecuteRequest) (*models.ExecutionResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "executor.execute",
		attribute.String(otelhelper.WorkflowIDKey, req.WorkflowID),
		attribute.String(otelhelper.ExecutionTypeKey, string(req.ExecutionType)),
	)
	defer span.End()

	start := e.now()

	err := e.validate.Struct(req)
	if err != nil {
		return e.finish(ctx, req, start, nil, fmt.Errorf("invalid execution request: %w", err), false)
	}

	if e.guard != nil {
		err := e.guard.Validate(req.WorkflowID, req.Payload)
		if err != nil {
			return e.finish(ctx, req, start, nil, err, false)
		}
	}

	e.publish(ctx, req.WorkflowID, events.ExecutionRequested{
		BaseEvent:     events.NewBaseEvent(events.ExecutionRequestedEvent, req.WorkflowID),
		ExecutionType: req.ExecutionType,
		TriggerNodeID: req.TriggerNodeID,
	})

	switch req.ExecutionType {
	case models.ExecutionTypeManual:
		result, err := e.executeManual(ctx, req.WorkflowID, req.Payload)

		return e.finish(ctx, req, start, result, err, false)
	case models.ExecutionTypeWebhook:
		result, err := e.executeWebhook(ctx, req.WorkflowID, req.Payload, req.TriggerNodeID)

		return e.finish(ctx, req, start, result, err, false)
	case models.ExecutionTypeTest:
		result, err := e.executeTest(ctx, req.WorkflowID, req.Payload)

		return e.finish(ctx, req, start, result, err, true)
	default:
		return e.finish(ctx, req, start, nil, fmt.Errorf("%w: %s", ErrUnsupportedExecutionType, req.ExecutionType), false)
	}
}

// Stop asks the engine to stop a running execution.
func (e *Executor) Stop(ctx context.Context, executionID string) (bool, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "executor.stop",
		attribute.String(otelhelper.ExecutionIDKey, executionID),
	)
	defer span.End()

	stopped, err := e.engine.StopExecution(ctx, executionID)
	if err != nil {
		otelhelper.SetError(span, err)

		return false, err
	}

	return stopped, nil
}

type partialResult struct {
	executionID string
	data        map[string]any
}

func (e *Executor) executeManual(ctx context.Context, workflowID string, payload map[string]any) (*partialResult, error) {
	manual, err := e.engine.ExecuteManual(ctx, workflowID, payload)
	if err != nil {
		return nil, err
	}

	return &partialResult{
		executionID: string(manual.ExecutionID),
		data:        manual.Data,
	}, nil
}

func (e *Executor) executeWebhook(ctx context.Context, workflowID string, payload map[string]any, triggerNodeID string) (*partialResult, error) {
	workflow, err := e.engine.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	result, err := e.webhooks.Execute(ctx, workflow, payload, triggerNodeID)
	if err != nil {
		return nil, err
	}

	return &partialResult{
		executionID: result.ExecutionID,
		data:        result.Data,
	}, nil
}

// executeTest synthesizes a payload from the workflow's first generated test
// scenario, tries the webhook path and falls back to manual. A double failure
// reports both messages so the caller can tell which path broke.
func (e *Executor) executeTest(ctx context.Context, workflowID string, payload map[string]any) (*partialResult, error) {
	workflow, err := e.engine.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if payload == nil {
		scenarios := analyzer.GenerateTestScenarios(workflow)
		payload = scenarios[0].Payload
	}

	result, webhookErr := e.webhooks.Execute(ctx, workflow, payload, "")
	if webhookErr == nil {
		return &partialResult{
			executionID: result.ExecutionID,
			data:        result.Data,
		}, nil
	}

	e.logger.Warn("Test webhook path failed, falling back to manual execution",
		"workflow_id", workflowID, "error", webhookErr)

	manual, manualErr := e.engine.ExecuteManual(ctx, workflowID, payload)
	if manualErr == nil {
		return &partialResult{
			executionID: string(manual.ExecutionID),
			data:        manual.Data,
		}, nil
	}

	return nil, fmt.Errorf("webhook execution failed: %v; manual execution failed: %v", webhookErr, manualErr)
}

// finish measures duration, assembles the result, publishes lifecycle events
// and records the audit trail. For suppressed paths (test executions) the
// error is folded into the result instead of returned.
func (e *Executor) finish(
	ctx context.Context,
	req *models.ExecuteRequest,
	start time.Time,
	partial *partialResult,
	execErr error,
	suppressErr bool,
) (*models.ExecutionResult, error) {
	duration := e.now().Sub(start)

	result := &models.ExecutionResult{
		Success:  execErr == nil,
		Duration: duration,
	}

	if partial != nil {
		result.ExecutionID = partial.executionID
		result.Data = partial.data
	}

	if execErr != nil {
		result.Error = execErr.Error()

		e.publish(ctx, req.WorkflowID, events.ExecutionFailed{
			BaseEvent:     events.NewBaseEvent(events.ExecutionFailedEvent, req.WorkflowID),
			ExecutionType: req.ExecutionType,
			Error:         execErr.Error(),
			Duration:      duration,
		})
	} else {
		e.publish(ctx, req.WorkflowID, events.ExecutionCompleted{
			BaseEvent:     events.NewBaseEvent(events.ExecutionCompletedEvent, req.WorkflowID),
			ExecutionID:   result.ExecutionID,
			ExecutionType: req.ExecutionType,
			Duration:      duration,
		})
	}

	e.recordAudit(ctx, req, result)

	if suppressErr {
		return result, nil
	}

	return result, execErr
}

func (e *Executor) publish(ctx context.Context, workflowID string, event eventbus.Event) {
	if e.events == nil {
		return
	}

	err := e.events.Publish(ctx, workflowID, event)
	if err != nil {
		e.logger.Warn("Failed to publish execution event",
			"workflow_id", workflowID, "event_type", event.GetType(), "error", err)
	}
}

func (e *Executor) recordAudit(ctx context.Context, req *models.ExecuteRequest, result *models.ExecutionResult) {
	if e.audit == nil {
		return
	}

	record := &persistence.AuditRecord{
		ID:            uuid.New().String(),
		WorkflowID:    req.WorkflowID,
		ExecutionID:   result.ExecutionID,
		ExecutionType: req.ExecutionType,
		Success:       result.Success,
		Error:         result.Error,
		Duration:      result.Duration,
		CreatedAt:     e.now().UTC(),
	}

	err := e.audit.SaveAuditRecord(ctx, record)
	if err != nil {
		e.logger.Warn("Failed to persist audit record",
			"workflow_id", req.WorkflowID, "error", err)
	}
}
