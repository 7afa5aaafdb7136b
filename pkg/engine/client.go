package engine

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukex/flowbridge/pkg/config"
	"github.com/dukex/flowbridge/pkg/models"
	"github.com/dukex/flowbridge/pkg/otelhelper"
)

// Client talks to the automation engine's REST API. All calls carry the
// static API key and a finite per-request timeout.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
	tracer trace.Tracer
}

// ManualExecution is the engine's response to a manual trigger.
type ManualExecution struct {
	ExecutionID models.FlexibleID `json:"executionId"`
	Data        map[string]any    `json:"data,omitempty"`
}

type executionList struct {
	Data []*models.Execution `json:"data"`
}

// NewClient builds an engine client from the bridge configuration.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.EngineURL).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader(cfg.APIKeyHeader, cfg.APIKey)

	return &Client{
		http:   httpClient,
		logger: logger.With("module", "engine_client"),
		tracer: otel.Tracer("flowbridge/engine"),
	}
}

// newRequest starts a request that decodes the response as JSON regardless
// of the content type the engine reports. A body that is not valid JSON then
// surfaces as an error instead of a silently zero-valued result.
func (c *Client) newRequest(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		ForceContentType("application/json")
}

// GetWorkflow fetches an immutable workflow snapshot.
func (c *Client) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "engine.get_workflow",
		attribute.String(otelhelper.WorkflowIDKey, id))
	defer span.End()

	workflow := &models.Workflow{}

	resp, err := c.newRequest(ctx).
		SetResult(workflow).
		Get("/workflows/" + id)
	if err := c.check(resp, err); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	return workflow, nil
}

// GetExecutions lists executions for a workflow, ordered most-recent-first
// by the engine.
func (c *Client) GetExecutions(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error) {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "engine.get_executions",
		attribute.String(otelhelper.WorkflowIDKey, workflowID))
	defer span.End()

	list := &executionList{}

	resp, err := c.newRequest(ctx).
		SetQueryParam("workflowId", workflowID).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(list).
		Get("/executions")
	if err := c.check(resp, err); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	return list.Data, nil
}

// ExecuteManual triggers a workflow run directly, bypassing webhook routing.
func (c *Client) ExecuteManual(ctx context.Context, workflowID string, payload map[string]any) (*ManualExecution, error) {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "engine.execute_manual",
		attribute.String(otelhelper.WorkflowIDKey, workflowID))
	defer span.End()

	result := &ManualExecution{}

	resp, err := c.newRequest(ctx).
		SetBody(payload).
		SetResult(result).
		Post("/workflows/" + workflowID + "/execute")
	if err := c.check(resp, err); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	return result, nil
}

// StopExecution asks the engine to stop an in-flight execution. The stop is
// out-of-band: a true stop is observed only on the next status fetch.
func (c *Client) StopExecution(ctx context.Context, executionID string) (bool, error) {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "engine.stop_execution",
		attribute.String(otelhelper.ExecutionIDKey, executionID))
	defer span.End()

	resp, err := c.newRequest(ctx).
		Post("/executions/" + executionID + "/stop")
	if err := c.check(resp, err); err != nil {
		otelhelper.SetError(span, err)

		return false, err
	}

	return true, nil
}

// GetExecutionDetail fetches a single execution. When includeData is set it
// asks for the full result tree first and silently retries without the flag
// if the engine rejects the request. If the result is still absent, a
// best-effort secondary results endpoint is tried; its failure is swallowed
// and treated as "no result data".
func (c *Client) GetExecutionDetail(ctx context.Context, executionID string, includeData bool) (*models.Execution, error) {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "engine.get_execution_detail",
		attribute.String(otelhelper.ExecutionIDKey, executionID))
	defer span.End()

	execution, err := c.fetchExecution(ctx, executionID, includeData)
	if err != nil && includeData {
		c.logger.DebugContext(ctx, "Data-rich execution fetch rejected, retrying without includeData",
			"execution_id", executionID, "error", err)

		execution, err = c.fetchExecution(ctx, executionID, false)
	}

	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if includeData && len(execution.Result) == 0 {
		c.hydrateFromResultsEndpoint(ctx, execution)
	}

	return execution, nil
}

func (c *Client) fetchExecution(ctx context.Context, executionID string, includeData bool) (*models.Execution, error) {
	execution := &models.Execution{}

	request := c.newRequest(ctx).
		SetResult(execution)
	if includeData {
		request.SetQueryParam("includeData", "true")
	}

	resp, err := request.Get("/executions/" + executionID)
	if err := c.check(resp, err); err != nil {
		return nil, err
	}

	return execution, nil
}

// hydrateFromResultsEndpoint tries the secondary results endpoint. Failure
// here is never an overall failure.
func (c *Client) hydrateFromResultsEndpoint(ctx context.Context, execution *models.Execution) {
	var result map[string]any

	resp, err := c.newRequest(ctx).
		SetResult(&result).
		Get("/executions/" + string(execution.ID) + "/results")
	if err := c.check(resp, err); err != nil {
		c.logger.DebugContext(ctx, "Secondary results fetch failed, treating as no result data",
			"execution_id", execution.ID, "error", err)

		return
	}

	if len(result) > 0 {
		execution.Result = result
	}
}

func (c *Client) check(resp *resty.Response, err error) error {
	if err != nil {
		return &Error{Message: err.Error()}
	}

	if resp.IsError() {
		return &Error{Status: resp.StatusCode(), Message: string(resp.Body())}
	}

	return nil
}
