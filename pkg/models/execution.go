package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// ExecutionStatus defines the possible states of a workflow execution.
type ExecutionStatus string

const (
	ExecutionStatusRunning ExecutionStatus = "running"
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusError   ExecutionStatus = "error"
)

// FlexibleID is a string id that also accepts a JSON number on the wire.
// Some engine versions report execution ids numerically.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*f = FlexibleID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}

	*f = FlexibleID(n.String())

	return nil
}

// Execution is one run instance of a workflow. It is created by the engine
// when triggered and immutable once terminal; the bridge only reads it.
// Result is the engine's untyped nested run-data tree; no field inside it
// is guaranteed present.
type Execution struct {
	ID          FlexibleID      `json:"id"`
	WorkflowID  FlexibleID      `json:"workflowId"`
	Status      ExecutionStatus `json:"status"`
	StartedAt   time.Time       `json:"startedAt"`
	StoppedAt   *time.Time      `json:"stoppedAt,omitempty"`
	Result      map[string]any  `json:"data,omitempty"`
	Progress    *int            `json:"progress,omitempty"`
	CurrentNode string          `json:"currentNode,omitempty"`
}

// IsRunning reports whether the execution is still in flight.
func (e *Execution) IsRunning() bool {
	return e.Status == ExecutionStatusRunning
}

// Duration returns the wall-clock duration of the execution, or false when
// either timestamp is missing. Executions without both timestamps must never
// enter latency aggregates.
func (e *Execution) Duration() (time.Duration, bool) {
	if e.StartedAt.IsZero() || e.StoppedAt == nil || e.StoppedAt.IsZero() {
		return 0, false
	}

	return e.StoppedAt.Sub(e.StartedAt), true
}
