// Package events defines the bridge's execution lifecycle event types.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/dukex/flowbridge/pkg/models"
)

type EventType string

const Topic = "flowbridge.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionRequestedEvent EventType = "execution.requested"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
	MonitoringSnapshotEvent EventType = "monitoring.snapshot"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent stamps a fresh event envelope.
func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

// ExecutionRequested is published when the bridge starts driving a workflow
// run, before the outcome is known.
type ExecutionRequested struct {
	BaseEvent

	ExecutionType models.ExecutionType `json:"execution_type"`
	TriggerNodeID string               `json:"trigger_node_id,omitempty"`
}

func (e ExecutionRequested) GetType() EventType {
	return ExecutionRequestedEvent
}

// ExecutionCompleted is published for every successful execution attempt.
type ExecutionCompleted struct {
	BaseEvent

	ExecutionID   string               `json:"execution_id,omitempty"`
	ExecutionType models.ExecutionType `json:"execution_type"`
	Duration      time.Duration        `json:"duration"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

// ExecutionFailed is published for every failed execution attempt.
type ExecutionFailed struct {
	BaseEvent

	ExecutionType models.ExecutionType `json:"execution_type"`
	Error         string               `json:"error"`
	Duration      time.Duration        `json:"duration"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}

// MonitoringSnapshot carries a fresh live monitoring view for downstream
// consumers (dashboards, alerting).
type MonitoringSnapshot struct {
	BaseEvent

	Snapshot *models.LiveMonitoring `json:"snapshot"`
}

func (e MonitoringSnapshot) GetType() EventType {
	return MonitoringSnapshotEvent
}
