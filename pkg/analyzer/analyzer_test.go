package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowbridge/pkg/models"
)

func TestCategorizeNode_VendorTypes(t *testing.T) {
	testCases := []struct {
		nodeType string
		want     models.NodeCategory
	}{
		{"@vendor.chatTrigger", models.NodeCategoryTrigger},
		{"@vendor.agent", models.NodeCategoryAIModel},
		{"nodes-base.httpRequestTool", models.NodeCategoryTool},
		{"nodes-base.set", models.NodeCategoryDataSource},
		{"nodes-base.telegram", models.NodeCategoryNotification},
		{"nodes-base.noOp", models.NodeCategoryControlFlow},
		{"nodes-base.webhook", models.NodeCategoryTrigger},
		{"nodes-base.scheduleTrigger", models.NodeCategoryTrigger},
		{"@vendor/langchain.lmChatOpenAi", models.NodeCategoryAIModel},
	}

	for _, tc := range testCases {
		t.Run(tc.nodeType, func(t *testing.T) {
			assert.Equal(t, tc.want, CategorizeNode(tc.nodeType))
		})
	}
}

func TestCategorizeNode_TotalAndDeterministic(t *testing.T) {
	inputs := []string{"", "weird", "UPPERCASE.THING", "💥", "nodes-base.if", "a.b.c.d"}

	valid := map[models.NodeCategory]bool{
		models.NodeCategoryTrigger:      true,
		models.NodeCategoryAIModel:      true,
		models.NodeCategoryTool:         true,
		models.NodeCategoryDataSource:   true,
		models.NodeCategoryNotification: true,
		models.NodeCategoryControlFlow:  true,
	}

	for _, input := range inputs {
		first := CategorizeNode(input)
		second := CategorizeNode(input)

		assert.Equal(t, first, second, "categorization must be deterministic for %q", input)
		assert.True(t, valid[first], "categorization must be total for %q", input)
	}
}

func insightNodes(types ...string) []models.NodeInsight {
	nodes := make([]models.NodeInsight, 0, len(types))
	for _, nodeType := range types {
		nodes = append(nodes, models.NodeInsight{
			Type:     nodeType,
			Category: CategorizeNode(nodeType),
			Webhook:  isChatTriggerType(nodeType) || isPlainWebhookType(nodeType),
		})
	}

	return nodes
}

func TestCategorizeWorkflow_DecisionTree(t *testing.T) {
	workflow := &models.Workflow{ID: "wf-1"}

	testCases := []struct {
		name  string
		types []string
		want  models.WorkflowCategory
	}{
		{
			name:  "ai model plus chat trigger is an ai agent",
			types: []string{"@vendor.chatTrigger", "@vendor.agent"},
			want:  models.WorkflowCategoryAIAgent,
		},
		{
			name:  "ai agent wins over webhook signal",
			types: []string{"@vendor.chatTrigger", "@vendor.agent", "nodes-base.webhook"},
			want:  models.WorkflowCategoryAIAgent,
		},
		{
			name:  "webhook without ai is a webhook service",
			types: []string{"nodes-base.webhook", "nodes-base.set"},
			want:  models.WorkflowCategoryWebhookService,
		},
		{
			name:  "notification plus trigger is a notification system",
			types: []string{"nodes-base.scheduleTrigger", "nodes-base.telegram"},
			want:  models.WorkflowCategoryNotificationSystem,
		},
		{
			name:  "data shaping without the above is a data processor",
			types: []string{"nodes-base.set", "nodes-base.noOp"},
			want:  models.WorkflowCategoryDataProcessor,
		},
		{
			name:  "fallback is automation pipeline",
			types: []string{"nodes-base.noOp"},
			want:  models.WorkflowCategoryAutomationPipeline,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CategorizeWorkflow(workflow, insightNodes(tc.types...)))
		})
	}
}

func TestDeriveCapabilities(t *testing.T) {
	nodes := insightNodes(
		"@vendor.chatTrigger",
		"@vendor.agent",
		"nodes-base.httpRequestTool",
		"nodes-base.set",
		"nodes-base.telegram",
		"nodes-base.manualTrigger",
		"nodes-base.scheduleTrigger",
	)

	caps := DeriveCapabilities(nodes)

	assert.True(t, caps.ManualExecutable)
	assert.True(t, caps.WebhookTriggerable)
	assert.True(t, caps.ScheduleTriggered)
	assert.True(t, caps.HasAI)
	assert.True(t, caps.HasDataProcessing)
	assert.True(t, caps.HasNotifications)
	assert.True(t, caps.HasExternalAPIs)
	assert.True(t, caps.RequiresInput)
}

func TestDeriveCapabilities_Empty(t *testing.T) {
	caps := DeriveCapabilities(nil)

	assert.Equal(t, models.Capabilities{}, caps)
}

func TestGenerateControls_OrderAndMonitorAlwaysLast(t *testing.T) {
	caps := models.Capabilities{
		ManualExecutable:   true,
		WebhookTriggerable: true,
		HasAI:              true,
	}

	controls := GenerateControls("wf-1", caps)

	require.Len(t, controls, 4)
	assert.Equal(t, "execute", controls[0].ID)
	assert.Equal(t, "test_webhook", controls[1].ID)
	assert.Equal(t, "test_ai_agent", controls[2].ID)
	assert.Equal(t, "live_monitor", controls[3].ID)
}

func TestGenerateControls_MonitorAlwaysPresent(t *testing.T) {
	controls := GenerateControls("wf-1", models.Capabilities{})

	require.Len(t, controls, 1)
	assert.Equal(t, "live_monitor", controls[0].ID)
	assert.Equal(t, "/workflows/wf-1/monitoring", controls[0].Endpoint)
}

func executionAt(status models.ExecutionStatus, started time.Time, duration time.Duration) *models.Execution {
	execution := &models.Execution{Status: status, StartedAt: started}
	if duration > 0 {
		stopped := started.Add(duration)
		execution.StoppedAt = &stopped
	}

	return execution
}

func TestSummarizeHistory(t *testing.T) {
	now := time.Now()
	executions := []*models.Execution{
		executionAt(models.ExecutionStatusRunning, now, 0),
		executionAt(models.ExecutionStatusSuccess, now.Add(-time.Hour), 100*time.Millisecond),
		executionAt(models.ExecutionStatusError, now.Add(-2*time.Hour), 300*time.Millisecond),
	}

	history := SummarizeHistory(executions)

	assert.Equal(t, 3, history.Total)
	assert.Equal(t, 1, history.Succeeded)
	assert.Equal(t, 1, history.Failed)
	assert.Equal(t, 1, history.Running)
	// Running execution has no stop time and must not enter the average.
	assert.Equal(t, 200*time.Millisecond, history.AverageDuration)
	require.NotNil(t, history.LastExecutedAt)
	assert.Equal(t, now, *history.LastExecutedAt)
}

func TestSummarizeHistory_Empty(t *testing.T) {
	history := SummarizeHistory(nil)

	assert.Equal(t, 0, history.Total)
	assert.Equal(t, time.Duration(0), history.AverageDuration)
	assert.Nil(t, history.LastExecutedAt)
}

func TestBusinessMetrics_DefaultCategory(t *testing.T) {
	history := models.ExecutionHistory{Total: 4, Succeeded: 3, AverageDuration: 2 * time.Second}

	metrics := BusinessMetrics(models.WorkflowCategoryAutomationPipeline, history)

	assert.Equal(t, 75, metrics["success_rate"])
	assert.Equal(t, 4, metrics["execution_count"])
	assert.InDelta(t, 2.0, metrics["average_duration_seconds"], 0.001)
}

func TestBusinessMetrics_ZeroExecutions(t *testing.T) {
	metrics := BusinessMetrics(models.WorkflowCategoryAIAgent, models.ExecutionHistory{})

	assert.Equal(t, 0, metrics["resolution_rate"])
	assert.Equal(t, 0, metrics["conversations"])
}

func TestAnalyze_AssemblesInsight(t *testing.T) {
	workflow := &models.Workflow{
		ID:     "wf-1",
		Name:   "Support Agent",
		Active: true,
		Nodes: []*models.Node{
			{ID: "n1", Name: "Chat Trigger", Type: "@vendor.chatTrigger", WebhookID: "abc"},
			{ID: "n2", Name: "Agent", Type: "@vendor.agent"},
		},
	}

	insight := Analyze(workflow, nil)

	assert.Equal(t, "wf-1", insight.WorkflowID)
	assert.Equal(t, models.WorkflowCategoryAIAgent, insight.Category)
	assert.Len(t, insight.Nodes, 2)
	assert.True(t, insight.Capabilities.HasAI)
	assert.NotEmpty(t, insight.Controls)
	assert.Equal(t, "live_monitor", insight.Controls[len(insight.Controls)-1].ID)
	assert.Contains(t, insight.BusinessMetrics, "resolution_rate")
}
