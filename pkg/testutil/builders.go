// Package testutil provides test data builders shared across packages.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/dukex/flowbridge/pkg/models"
)

// CreateTestNode creates a webhook-capable trigger node with default values
// that can be overridden.
func CreateTestNode(overrides ...func(*models.Node)) *models.Node {
	node := &models.Node{
		ID:        uuid.New().String(),
		Name:      "Test Node",
		Type:      "n8n-nodes-base.webhook",
		WebhookID: "test-hook",
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithNodeType sets the node's capability type string.
func WithNodeType(nodeType string) func(*models.Node) {
	return func(node *models.Node) {
		node.Type = nodeType
	}
}

// WithNodeName sets the node's display name.
func WithNodeName(name string) func(*models.Node) {
	return func(node *models.Node) {
		node.Name = name
	}
}

// WithoutWebhook strips the webhook id, making the node a non-trigger.
func WithoutWebhook() func(*models.Node) {
	return func(node *models.Node) {
		node.WebhookID = ""
	}
}

// CreateTestWorkflow creates an active workflow wrapping the given nodes.
func CreateTestWorkflow(nodes ...*models.Node) *models.Workflow {
	return &models.Workflow{
		ID:     uuid.New().String(),
		Name:   "Test Workflow",
		Active: true,
		Nodes:  nodes,
	}
}

// CreateTestExecution creates a successful execution with default values
// that can be overridden.
func CreateTestExecution(overrides ...func(*models.Execution)) *models.Execution {
	started := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	stopped := started.Add(200 * time.Millisecond)

	execution := &models.Execution{
		ID:         models.FlexibleID(uuid.New().String()),
		WorkflowID: "wf-test",
		Status:     models.ExecutionStatusSuccess,
		StartedAt:  started,
		StoppedAt:  &stopped,
	}

	for _, override := range overrides {
		override(execution)
	}

	return execution
}

// WithStatus sets the execution status; running executions lose their stop
// timestamp.
func WithStatus(status models.ExecutionStatus) func(*models.Execution) {
	return func(execution *models.Execution) {
		execution.Status = status
		if status == models.ExecutionStatusRunning {
			execution.StoppedAt = nil
		}
	}
}

// WithStartedAt shifts the execution window, preserving its duration.
func WithStartedAt(startedAt time.Time) func(*models.Execution) {
	return func(execution *models.Execution) {
		if execution.StoppedAt != nil {
			duration := execution.StoppedAt.Sub(execution.StartedAt)
			stopped := startedAt.Add(duration)
			execution.StoppedAt = &stopped
		}

		execution.StartedAt = startedAt
	}
}
