package models

import "time"

// ExecutionType selects how a workflow run is triggered.
type ExecutionType string

const (
	ExecutionTypeManual  ExecutionType = "manual"
	ExecutionTypeWebhook ExecutionType = "webhook"
	ExecutionTypeTest    ExecutionType = "test"
)

// ExecuteRequest asks the bridge to start one workflow run.
type ExecuteRequest struct {
	WorkflowID    string         `json:"workflow_id"     validate:"required"`
	ExecutionType ExecutionType  `json:"execution_type"  validate:"required,oneof=manual webhook test"`
	Payload       map[string]any `json:"payload,omitempty"`
	TriggerNodeID string         `json:"trigger_node_id,omitempty"`
}

// ExecutionResult is the normalized outcome of one execution attempt.
// Duration is always set, regardless of success, so operators can tell
// "engine unreachable" from "workflow rejected".
type ExecutionResult struct {
	Success     bool           `json:"success"`
	ExecutionID string         `json:"execution_id,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	Error       string         `json:"error,omitempty"`
	Duration    time.Duration  `json:"duration"`
}
