// Package analyzer classifies opaque workflow node graphs into a small
// taxonomy of business capabilities and derives executive controls from it.
package analyzer

import (
	"strings"

	"github.com/dukex/flowbridge/pkg/models"
)

// nodeRule maps a type-string predicate to a category. Rules are evaluated
// top to bottom with early return; the order is the precedence contract and
// must stay auditable here rather than buried in conditionals.
type nodeRule struct {
	category models.NodeCategory
	keywords []string
}

var nodeRules = []nodeRule{
	{models.NodeCategoryTrigger, []string{"trigger", "webhook", "cron", "schedule"}},
	{models.NodeCategoryAIModel, []string{"langchain", "agent", "openai", "anthropic", "llm", "chatmodel"}},
	{models.NodeCategoryTool, []string{"http", "tool"}},
	{models.NodeCategoryDataSource, []string{"set", "code", "function", "spreadsheet", "postgres", "mysql", "merge", "filter", "split"}},
	{models.NodeCategoryNotification, []string{"telegram", "slack", "mail", "discord", "sendgrid", "whatsapp", "twilio"}},
}

// CategorizeNode maps any node type string to exactly one category. The
// function is pure and total: unknown types fall through to control_flow.
func CategorizeNode(nodeType string) models.NodeCategory {
	lower := strings.ToLower(nodeType)

	for _, rule := range nodeRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}

	return models.NodeCategoryControlFlow
}

// Node type predicates shared by workflow classification and scenario
// generation.

func isChatTriggerType(nodeType string) bool {
	return strings.Contains(strings.ToLower(nodeType), "chattrigger")
}

func isPlainWebhookType(nodeType string) bool {
	lower := strings.ToLower(nodeType)

	return strings.Contains(lower, "webhook") && !isChatTriggerType(nodeType)
}

func isManualTriggerType(nodeType string) bool {
	return strings.Contains(strings.ToLower(nodeType), "manual")
}

func isScheduleTriggerType(nodeType string) bool {
	lower := strings.ToLower(nodeType)

	return strings.Contains(lower, "schedule") || strings.Contains(lower, "cron") || strings.Contains(lower, "interval")
}

// CategorizeWorkflow classifies a whole workflow from its analyzed nodes.
// The check order is significant: overlapping signals must always resolve
// the same way.
func CategorizeWorkflow(workflow *models.Workflow, nodes []models.NodeInsight) models.WorkflowCategory {
	var hasAI, hasChat, hasWebhook, hasNotification, hasTrigger, hasData bool

	for _, node := range nodes {
		switch node.Category {
		case models.NodeCategoryAIModel:
			hasAI = true
		case models.NodeCategoryNotification:
			hasNotification = true
		case models.NodeCategoryDataSource:
			hasData = true
		case models.NodeCategoryTrigger:
			hasTrigger = true
		}

		if strings.Contains(strings.ToLower(node.Type), "chat") {
			hasChat = true
		}

		if node.Webhook || isPlainWebhookType(node.Type) {
			hasWebhook = true
		}
	}

	switch {
	case hasAI && hasChat:
		return models.WorkflowCategoryAIAgent
	case hasWebhook && !hasAI:
		return models.WorkflowCategoryWebhookService
	case hasNotification && hasTrigger:
		return models.WorkflowCategoryNotificationSystem
	case hasData:
		return models.WorkflowCategoryDataProcessor
	default:
		return models.WorkflowCategoryAutomationPipeline
	}
}
