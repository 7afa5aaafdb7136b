package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrAuditRecordNotFound indicates no audit record exists for the given identifier.
	ErrAuditRecordNotFound = errors.New("audit record not found")

	// ErrInvalidAuditRecord indicates a record is missing required fields.
	ErrInvalidAuditRecord = errors.New("invalid audit record")
)

// AuditError wraps audit store errors with operation context.
type AuditError struct {
	Op         string // Operation being performed (e.g., "Save", "List")
	WorkflowID string
	Err        error
}

func (e *AuditError) Error() string {
	if e.WorkflowID != "" {
		return fmt.Sprintf("audit %s for workflow %s: %v", e.Op, e.WorkflowID, e.Err)
	}

	return fmt.Sprintf("audit %s: %v", e.Op, e.Err)
}

func (e *AuditError) Unwrap() error {
	return e.Err
}
