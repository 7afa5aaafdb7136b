package analyzer

import (
	"math"
	"time"

	"github.com/dukex/flowbridge/pkg/models"
)

// AnalyzeNodes classifies every node of a workflow.
func AnalyzeNodes(workflow *models.Workflow) []models.NodeInsight {
	nodes := make([]models.NodeInsight, 0, len(workflow.Nodes))

	for _, node := range workflow.Nodes {
		nodes = append(nodes, models.NodeInsight{
			ID:       node.ID,
			Name:     node.Name,
			Type:     node.Type,
			Category: CategorizeNode(node.Type),
			Webhook:  node.IsTriggerCandidate(),
		})
	}

	return nodes
}

// DeriveCapabilities computes the capability flags, each an independent
// existence predicate over the analyzed node set.
func DeriveCapabilities(nodes []models.NodeInsight) models.Capabilities {
	caps := models.Capabilities{}

	for _, node := range nodes {
		if isManualTriggerType(node.Type) {
			caps.ManualExecutable = true
		}

		if node.Webhook || isPlainWebhookType(node.Type) || isChatTriggerType(node.Type) {
			caps.WebhookTriggerable = true
		}

		if isScheduleTriggerType(node.Type) {
			caps.ScheduleTriggered = true
		}

		if isChatTriggerType(node.Type) {
			caps.RequiresInput = true
		}

		switch node.Category {
		case models.NodeCategoryAIModel:
			caps.HasAI = true
		case models.NodeCategoryDataSource:
			caps.HasDataProcessing = true
		case models.NodeCategoryNotification:
			caps.HasNotifications = true
		case models.NodeCategoryTool:
			caps.HasExternalAPIs = true
		}
	}

	return caps
}

// GenerateControls emits the available executive actions in fixed order:
// execute, test-webhook, test-AI-agent, then live-monitor unconditionally
// last.
func GenerateControls(workflowID string, caps models.Capabilities) []models.Control {
	var controls []models.Control

	if caps.ManualExecutable {
		controls = append(controls, models.Control{
			ID:          "execute",
			Label:       "Execute",
			Description: "Start the workflow manually",
			Endpoint:    "/workflows/" + workflowID + "/execute",
		})
	}

	if caps.WebhookTriggerable {
		controls = append(controls, models.Control{
			ID:          "test_webhook",
			Label:       "Test Webhook",
			Description: "Send a test payload to the workflow's webhook trigger",
			Endpoint:    "/workflows/" + workflowID + "/execute",
		})
	}

	if caps.HasAI {
		controls = append(controls, models.Control{
			ID:          "test_ai_agent",
			Label:       "Test AI Agent",
			Description: "Send a test conversation turn to the AI agent",
			Endpoint:    "/workflows/" + workflowID + "/execute",
		})
	}

	controls = append(controls, models.Control{
		ID:          "live_monitor",
		Label:       "Live Monitor",
		Description: "Watch executions of this workflow in real time",
		Endpoint:    "/workflows/" + workflowID + "/monitoring",
	})

	return controls
}

// SummarizeHistory aggregates an execution batch, which the engine returns
// most-recent-first. Executions missing either timestamp never enter the
// duration average.
func SummarizeHistory(executions []*models.Execution) models.ExecutionHistory {
	history := models.ExecutionHistory{Total: len(executions)}

	var durationSum time.Duration

	var durationCount int

	for _, execution := range executions {
		switch execution.Status {
		case models.ExecutionStatusSuccess:
			history.Succeeded++
		case models.ExecutionStatusError:
			history.Failed++
		case models.ExecutionStatusRunning:
			history.Running++
		}

		if duration, ok := execution.Duration(); ok {
			durationSum += duration
			durationCount++
		}
	}

	if durationCount > 0 {
		history.AverageDuration = durationSum / time.Duration(durationCount)
	}

	if len(executions) > 0 && !executions[0].StartedAt.IsZero() {
		last := executions[0].StartedAt
		history.LastExecutedAt = &last
	}

	return history
}

// BusinessMetrics computes the category-specific KPI set from the history
// aggregates. Unknown categories use the default set.
func BusinessMetrics(category models.WorkflowCategory, history models.ExecutionHistory) map[string]any {
	successRate := 0
	if history.Total > 0 {
		successRate = int(math.Round(float64(history.Succeeded) / float64(history.Total) * 100))
	}

	averageSeconds := history.AverageDuration.Seconds()

	switch category {
	case models.WorkflowCategoryAIAgent:
		return map[string]any{
			"conversations":        history.Total,
			"resolution_rate":      successRate,
			"avg_response_seconds": averageSeconds,
		}
	case models.WorkflowCategoryWebhookService:
		return map[string]any{
			"requests":       history.Total,
			"success_rate":   successRate,
			"avg_latency_ms": history.AverageDuration.Milliseconds(),
		}
	case models.WorkflowCategoryDataProcessor:
		return map[string]any{
			"batches_processed": history.Succeeded,
			"failures":          history.Failed,
			"avg_batch_seconds": averageSeconds,
		}
	case models.WorkflowCategoryNotificationSystem:
		return map[string]any{
			"notifications_sent": history.Succeeded,
			"delivery_rate":      successRate,
			"failures":           history.Failed,
		}
	default:
		return map[string]any{
			"success_rate":             successRate,
			"execution_count":          history.Total,
			"average_duration_seconds": averageSeconds,
		}
	}
}

// Analyze computes the full derived insight for a workflow snapshot plus its
// recent executions. The insight has no lifecycle of its own; it is
// recomputed on every call.
func Analyze(workflow *models.Workflow, executions []*models.Execution) *models.WorkflowInsight {
	nodes := AnalyzeNodes(workflow)
	category := CategorizeWorkflow(workflow, nodes)
	caps := DeriveCapabilities(nodes)
	history := SummarizeHistory(executions)

	return &models.WorkflowInsight{
		WorkflowID:       workflow.ID,
		WorkflowName:     workflow.Name,
		Active:           workflow.Active,
		Category:         category,
		Capabilities:     caps,
		Nodes:            nodes,
		Controls:         GenerateControls(workflow.ID, caps),
		ExecutionHistory: history,
		BusinessMetrics:  BusinessMetrics(category, history),
	}
}
