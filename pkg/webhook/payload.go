package webhook

import "strings"

// Payload shape heuristics. Best effort only: callers can always bypass them
// by naming a trigger node explicitly.
var (
	chatFieldKeys = []string{"message", "text", "chatInput"}
	apiFieldKeys  = []string{"event", "data", "customer", "service"}

	chatInputSourceKeys = []string{"message", "text", "input"}
)

const defaultChatInput = "Hello"

// LooksLikeChat reports whether the payload carries a chat-style field.
func LooksLikeChat(payload map[string]any) bool {
	return hasAnyKey(payload, chatFieldKeys)
}

// LooksLikeAPI reports whether the payload carries an API-event-style field.
func LooksLikeAPI(payload map[string]any) bool {
	return hasAnyKey(payload, apiFieldKeys)
}

func hasAnyKey(payload map[string]any, keys []string) bool {
	for _, key := range keys {
		if _, ok := payload[key]; ok {
			return true
		}
	}

	return false
}

// BuildChatPayload returns a copy of the caller payload enriched with a
// chatInput field taken from the first of message/text/input present. The
// request timestamp is deliberately not added here: it is stamped at call
// time so retried attempts never carry a stale clock.
func BuildChatPayload(payload map[string]any) map[string]any {
	enriched := make(map[string]any, len(payload)+2)
	for key, value := range payload {
		enriched[key] = value
	}

	chatInput := defaultChatInput

	for _, key := range chatInputSourceKeys {
		if value, ok := payload[key].(string); ok && value != "" {
			chatInput = value

			break
		}
	}

	enriched["chatInput"] = chatInput

	return enriched
}

// isChatTriggerType matches chat-capable trigger node types across vendors.
func isChatTriggerType(nodeType string) bool {
	return strings.Contains(strings.ToLower(nodeType), "chattrigger")
}

// isPlainWebhookType matches plain HTTP webhook trigger node types.
func isPlainWebhookType(nodeType string) bool {
	lower := strings.ToLower(nodeType)

	return strings.Contains(lower, "webhook") && !isChatTriggerType(nodeType)
}
