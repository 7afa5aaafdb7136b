package models

import "time"

// ConversationTurn is one reconstructed (input, output) pair recovered from
// a single execution's result tree, suitable for turn-by-turn display.
type ConversationTurn struct {
	ExecutionID string          `json:"execution_id"`
	Input       string          `json:"input"`
	Output      string          `json:"output"`
	Timestamp   time.Time       `json:"timestamp"`
	Status      ExecutionStatus `json:"status"`
	Duration    string          `json:"duration,omitempty"`
}
