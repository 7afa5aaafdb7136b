package models

import "time"

// ExecutionSummary is a compact view of one execution for monitoring lists.
type ExecutionSummary struct {
	ID        string          `json:"id"`
	Status    ExecutionStatus `json:"status"`
	StartedAt time.Time       `json:"started_at"`
	StoppedAt *time.Time      `json:"stopped_at,omitempty"`
	Progress  int             `json:"progress"`
}

// MonitoringMetrics carries today's throughput figures. "Today" is the
// current calendar day in the aggregator's reporting timezone, not a rolling
// 24h window.
type MonitoringMetrics struct {
	ExecutionsToday     int   `json:"executions_today"`
	SuccessRate         int   `json:"success_rate"`
	AverageResponseTime int64 `json:"average_response_time_ms"`
	ErrorCount          int   `json:"error_count"`
}

// LiveMonitoring is a wholesale snapshot of a workflow's current run state.
// Each poll replaces the previous snapshot entirely; snapshots are never
// merged.
type LiveMonitoring struct {
	WorkflowID       string             `json:"workflow_id"`
	IsRunning        bool               `json:"is_running"`
	CurrentExecution *ExecutionSummary  `json:"current_execution,omitempty"`
	RecentExecutions []ExecutionSummary `json:"recent_executions"`
	Metrics          MonitoringMetrics  `json:"metrics"`
	GeneratedAt      time.Time          `json:"generated_at"`
}
