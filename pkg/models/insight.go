package models

import "time"

// NodeCategory is the coarse capability class of a single node type.
type NodeCategory string

const (
	NodeCategoryTrigger      NodeCategory = "trigger"
	NodeCategoryAIModel      NodeCategory = "ai_model"
	NodeCategoryTool         NodeCategory = "tool"
	NodeCategoryDataSource   NodeCategory = "data_source"
	NodeCategoryNotification NodeCategory = "notification"
	NodeCategoryControlFlow  NodeCategory = "control_flow"
)

// WorkflowCategory is the business capability class of a whole workflow.
type WorkflowCategory string

const (
	WorkflowCategoryAIAgent            WorkflowCategory = "ai_agent"
	WorkflowCategoryWebhookService     WorkflowCategory = "webhook_service"
	WorkflowCategoryDataProcessor      WorkflowCategory = "data_processor"
	WorkflowCategoryAutomationPipeline WorkflowCategory = "automation_pipeline"
	WorkflowCategoryNotificationSystem WorkflowCategory = "notification_system"
)

// NodeInsight is a single analyzed node.
type NodeInsight struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Type     string       `json:"type"`
	Category NodeCategory `json:"category"`
	Webhook  bool         `json:"webhook"`
}

// Capabilities are existence predicates over the analyzed node set, derived
// independently of the workflow category.
type Capabilities struct {
	ManualExecutable   bool `json:"manual_executable"`
	WebhookTriggerable bool `json:"webhook_triggerable"`
	ScheduleTriggered  bool `json:"schedule_triggered"`
	HasAI              bool `json:"has_ai"`
	HasDataProcessing  bool `json:"has_data_processing"`
	HasNotifications   bool `json:"has_notifications"`
	HasExternalAPIs    bool `json:"has_external_apis"`
	RequiresInput      bool `json:"requires_input"`
}

// Control is a user-facing executive action derived from workflow
// capabilities.
type Control struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Endpoint    string `json:"endpoint"`
}

// ExecutionHistory aggregates a workflow's recent execution batch.
type ExecutionHistory struct {
	Total           int           `json:"total"`
	Succeeded       int           `json:"succeeded"`
	Failed          int           `json:"failed"`
	Running         int           `json:"running"`
	AverageDuration time.Duration `json:"average_duration"`
	LastExecutedAt  *time.Time    `json:"last_executed_at,omitempty"`
}

// TestScenario is a synthetic execution template derived from a workflow's
// trigger capabilities.
type TestScenario struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	TriggerType string         `json:"trigger_type"`
	Payload     map[string]any `json:"payload"`
}

// WorkflowInsight is the derived, non-persisted analysis of a workflow plus
// its execution history. It is recomputed on demand and has no lifecycle of
// its own.
type WorkflowInsight struct {
	WorkflowID       string            `json:"workflow_id"`
	WorkflowName     string            `json:"workflow_name"`
	Active           bool              `json:"active"`
	Category         WorkflowCategory  `json:"category"`
	Capabilities     Capabilities      `json:"capabilities"`
	Nodes            []NodeInsight     `json:"nodes"`
	Controls         []Control         `json:"controls"`
	ExecutionHistory ExecutionHistory  `json:"execution_history"`
	BusinessMetrics  map[string]any    `json:"business_metrics"`
}
