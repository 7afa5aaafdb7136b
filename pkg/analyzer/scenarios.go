package analyzer

import "github.com/dukex/flowbridge/pkg/models"

// GenerateTestScenarios enumerates scenario templates from the workflow's
// trigger capabilities, in fixed order: chat, webhook, manual. The order is
// load-bearing: test execution always takes the first scenario's payload as
// its default, and the UI presents scenarios in this order.
func GenerateTestScenarios(workflow *models.Workflow) []models.TestScenario {
	var hasChat, hasWebhook, hasManual bool

	for _, node := range workflow.Nodes {
		if isChatTriggerType(node.Type) {
			hasChat = true
		}

		if isPlainWebhookType(node.Type) {
			hasWebhook = true
		}

		if isManualTriggerType(node.Type) {
			hasManual = true
		}
	}

	var scenarios []models.TestScenario

	if hasChat {
		scenarios = append(scenarios, models.TestScenario{
			ID:          "chat_test",
			Name:        "Chat Test",
			Description: "Send a greeting to the chat trigger",
			TriggerType: "chat",
			Payload:     map[string]any{"message": "Hello, this is a test message."},
		})
	}

	if hasWebhook {
		scenarios = append(scenarios, models.TestScenario{
			ID:          "webhook_test",
			Name:        "Webhook Test",
			Description: "Call the webhook trigger with an empty payload",
			TriggerType: "webhook",
			Payload:     map[string]any{},
		})
	}

	if hasManual {
		scenarios = append(scenarios, models.TestScenario{
			ID:          "manual_test",
			Name:        "Manual Test",
			Description: "Start the workflow manually with an empty payload",
			TriggerType: "manual",
			Payload:     map[string]any{},
		})
	}

	if len(scenarios) == 0 {
		scenarios = append(scenarios, models.TestScenario{
			ID:          "basic_test",
			Name:        "Basic Test",
			Description: "Start the workflow with an empty payload",
			TriggerType: "manual",
			Payload:     map[string]any{},
		})
	}

	return scenarios
}
