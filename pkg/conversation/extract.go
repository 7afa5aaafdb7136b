// Package conversation reconstructs human-readable input/output turns from
// the engine's nested execution-result trees.
package conversation

import (
	"encoding/json"
	"fmt"
)

// Placeholders rendered when extraction finds nothing. Extraction never
// fails harder than this.
const (
	NoInputFound  = "no input found"
	NoOutputFound = "no output found"
)

// Display names the engine assigns to the node kinds we extract from.
// Run-data lookups are case-sensitive.
var (
	chatTriggerNodeNames = []string{"Chat Trigger", "When chat message received"}
	aiAgentNodeNames     = []string{"AI Agent", "Agent"}
	webhookRespondNames  = []string{"Respond to Webhook", "Webhook Response"}
)

// ExtractInput recovers the user-side input of one execution result. The
// precedence list is fixed; any structural mismatch degrades to the
// placeholder, never to a panic.
func ExtractInput(result any) string {
	if tree, ok := result.(map[string]any); ok {
		for _, name := range chatTriggerNodeNames {
			if nodeJSON, ok := nodeRunJSON(tree, name); ok {
				if value, ok := fieldString(nodeJSON, "chatInput"); ok {
					return value
				}

				if value, ok := fieldString(nodeJSON, "message"); ok {
					return value
				}
			}
		}

		if topJSON, ok := tree["json"].(map[string]any); ok {
			if value, ok := fieldString(topJSON, "chatInput"); ok {
				return value
			}
		}

		for _, key := range []string{"input", "message", "prompt"} {
			if value, ok := fieldString(tree, key); ok {
				return value
			}
		}
	}

	if value, ok := result.(string); ok && value != "" {
		return value
	}

	return NoInputFound
}

// ExtractOutput recovers the system-side output of one execution result,
// with the same never-raises guarantee as ExtractInput.
func ExtractOutput(result any) string {
	tree, ok := result.(map[string]any)
	if !ok {
		return NoOutputFound
	}

	for _, names := range [][]string{aiAgentNodeNames, webhookRespondNames} {
		for _, name := range names {
			if nodeJSON, ok := nodeRunJSON(tree, name); ok {
				if value, ok := fieldString(nodeJSON, "output"); ok {
					return value
				}
			}
		}
	}

	if topJSON, ok := tree["json"].(map[string]any); ok {
		if value, ok := fieldString(topJSON, "output"); ok {
			return value
		}
	}

	for _, key := range []string{"output", "response", "result"} {
		if value, ok := fieldString(tree, key); ok {
			return value
		}
	}

	return NoOutputFound
}

// nodeRunJSON digs to runData[nodeName][0].data.main[0][0].json. The tree
// may or may not carry the outer "data" envelope depending on which engine
// endpoint produced it.
func nodeRunJSON(tree map[string]any, nodeName string) (map[string]any, bool) {
	runData, ok := digMap(tree, "data", "resultData", "runData")
	if !ok {
		runData, ok = digMap(tree, "resultData", "runData")
	}

	if !ok {
		return nil, false
	}

	runs, ok := runData[nodeName].([]any)
	if !ok || len(runs) == 0 {
		return nil, false
	}

	run, ok := runs[0].(map[string]any)
	if !ok {
		return nil, false
	}

	main, ok := digMap(run, "data")
	if !ok {
		return nil, false
	}

	branches, ok := main["main"].([]any)
	if !ok || len(branches) == 0 {
		return nil, false
	}

	items, ok := branches[0].([]any)
	if !ok || len(items) == 0 {
		return nil, false
	}

	item, ok := items[0].(map[string]any)
	if !ok {
		return nil, false
	}

	nodeJSON, ok := item["json"].(map[string]any)

	return nodeJSON, ok
}

// digMap walks nested maps along keys, returning false on the first missing
// or mis-shaped level.
func digMap(tree map[string]any, keys ...string) (map[string]any, bool) {
	current := tree

	for _, key := range keys {
		next, ok := current[key].(map[string]any)
		if !ok {
			return nil, false
		}

		current = next
	}

	return current, true
}

// fieldString reads a field as display text. Strings pass through; other
// non-nil values are rendered as JSON so structured outputs stay readable.
func fieldString(tree map[string]any, key string) (string, bool) {
	value, ok := tree[key]
	if !ok || value == nil {
		return "", false
	}

	if text, ok := value.(string); ok {
		if text == "" {
			return "", false
		}

		return text, true
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value), true
	}

	return string(encoded), true
}
