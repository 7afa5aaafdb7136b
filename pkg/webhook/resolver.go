package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukex/flowbridge/pkg/config"
	"github.com/dukex/flowbridge/pkg/models"
)

// ExecutionLister is the slice of the engine client the resolver needs to
// correlate a webhook response with an execution id.
type ExecutionLister interface {
	GetExecutions(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error)
}

// Result is a successful webhook dispatch.
type Result struct {
	ExecutionID string         `json:"execution_id,omitempty"`
	NodeID      string         `json:"node_id"`
	URL         string         `json:"url"`
	Data        map[string]any `json:"data,omitempty"`
}

// Resolver selects a workflow's trigger node and dispatches the webhook call
// with a bounded fallback chain over live/test bases and path variants.
type Resolver struct {
	liveRoot   string
	testRoot   string
	httpClient *http.Client
	executions ExecutionLister
	timeout    time.Duration
	logger     *slog.Logger
}

// NewResolver builds a resolver from the bridge configuration. Resolution of
// the webhook roots happens here so a misconfigured bridge fails before any
// workflow is triggered.
func NewResolver(cfg *config.Config, executions ExecutionLister, logger *slog.Logger) (*Resolver, error) {
	live, test, err := cfg.WebhookRoots()
	if err != nil {
		return nil, err
	}

	return &Resolver{
		liveRoot:   live,
		testRoot:   test,
		httpClient: &http.Client{},
		executions: executions,
		timeout:    cfg.RequestTimeout,
		logger:     logger.With("module", "webhook_resolver"),
	}, nil
}

// SelectTrigger picks exactly one trigger node from the workflow's webhook
// candidates, in fixed precedence: explicit caller choice, then payload
// shape heuristics, then node type preference, then first candidate.
func SelectTrigger(workflow *models.Workflow, payload map[string]any, explicitNodeID string) (*models.Node, error) {
	candidates := workflow.TriggerCandidates()
	if len(candidates) == 0 {
		return nil, ErrNoTriggerFound
	}

	if explicitNodeID != "" {
		for _, candidate := range candidates {
			if candidate.ID == explicitNodeID {
				return candidate, nil
			}
		}
	}

	var chatCandidate, webhookCandidate *models.Node

	for _, candidate := range candidates {
		switch {
		case chatCandidate == nil && isChatTriggerType(candidate.Type):
			chatCandidate = candidate
		case webhookCandidate == nil && isPlainWebhookType(candidate.Type):
			webhookCandidate = candidate
		}
	}

	if chatCandidate != nil && !LooksLikeAPI(payload) {
		return chatCandidate, nil
	}

	if webhookCandidate != nil {
		return webhookCandidate, nil
	}

	if chatCandidate != nil {
		return chatCandidate, nil
	}

	return candidates[0], nil
}

// Execute resolves the trigger node and walks the fallback chain, stopping
// at the first 2xx. Attempts are strictly sequential so the workflow is
// never triggered more than once concurrently against ambiguous endpoints.
func (r *Resolver) Execute(ctx context.Context, workflow *models.Workflow, payload map[string]any, explicitNodeID string) (*Result, error) {
	node, err := SelectTrigger(workflow, payload, explicitNodeID)
	if err != nil {
		return nil, err
	}

	chosenBase, otherBase := r.liveRoot, r.testRoot
	if !workflow.Active {
		chosenBase, otherBase = r.testRoot, r.liveRoot
	}

	path := node.PathParameter()
	if path == "" {
		path = node.WebhookID
	}

	urls := buildAttemptPlan(chosenBase, otherBase, path)
	chatNode := isChatTriggerType(node.Type)
	method := node.HTTPMethod()

	r.logger.InfoContext(ctx, "Dispatching webhook execution",
		"workflow_id", workflow.ID,
		"node_id", node.ID,
		"node_type", node.Type,
		"method", method,
		"attempts", len(urls),
	)

	for _, url := range urls {
		status, data, err := r.dispatch(ctx, method, url, payload, chatNode)
		if err != nil {
			return nil, err
		}

		if status == http.StatusNotFound {
			r.logger.DebugContext(ctx, "Webhook endpoint variant not found, trying next", "url", url)

			continue
		}

		result := &Result{
			NodeID: node.ID,
			URL:    url,
			Data:   data,
		}
		result.ExecutionID = r.correlateExecution(ctx, workflow.ID)

		return result, nil
	}

	return nil, fmt.Errorf("%w: workflow %s, node %s", ErrWebhookNotFound, workflow.ID, node.ID)
}

// buildAttemptPlan computes the full fallback sequence up front: chosen base,
// chosen base with chat suffix, then the same pair on the other base. The
// order is a contract.
func buildAttemptPlan(chosenBase, otherBase, path string) []string {
	urls := []string{
		chosenBase + "/" + path,
		chosenBase + "/" + path + "/chat",
	}

	if otherBase != "" && otherBase != chosenBase {
		urls = append(urls,
			otherBase+"/"+path,
			otherBase+"/"+path+"/chat",
		)
	}

	return urls
}

// dispatch performs a single attempt with its own timeout. A 404 is reported
// via status so the caller can fall through; any other failure is terminal.
func (r *Resolver) dispatch(ctx context.Context, method, url string, payload map[string]any, chatNode bool) (int, map[string]any, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var bodyReader io.Reader

	if method != http.MethodGet {
		body := payload
		if chatNode {
			body = BuildChatPayload(payload)
			// Stamped per attempt, at call time, never at payload
			// construction.
			body["timestamp"] = time.Now().UTC().Format(time.RFC3339)
		}

		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode webhook payload: %w", err)
		}

		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, url, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("webhook request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read webhook response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return http.StatusNotFound, nil, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, nil, fmt.Errorf("webhook endpoint %s returned status %d: %s", url, resp.StatusCode, string(responseBody))
	}

	return resp.StatusCode, decodeResponse(responseBody), nil
}

// decodeResponse keeps non-JSON webhook responses readable instead of
// failing the whole dispatch.
func decodeResponse(body []byte) map[string]any {
	if len(body) == 0 {
		return nil
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err == nil {
		return data
	}

	return map[string]any{"response": string(body)}
}

// correlateExecution recovers the id of the run this webhook call started.
// Best effort only: a missing id is not an error.
func (r *Resolver) correlateExecution(ctx context.Context, workflowID string) string {
	if r.executions == nil {
		return ""
	}

	executions, err := r.executions.GetExecutions(ctx, workflowID, 1)
	if err != nil || len(executions) == 0 {
		r.logger.DebugContext(ctx, "Could not correlate webhook call with an execution",
			"workflow_id", workflowID, "error", err)

		return ""
	}

	return string(executions[0].ID)
}
