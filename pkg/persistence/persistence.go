// Package persistence provides the storage abstraction for execution audit
// records.
package persistence

import (
	"context"
	"time"

	"github.com/dukex/flowbridge/pkg/models"
)

// AuditRecord is the durable trace of a single execution attempt driven by
// the bridge, whatever the outcome.
type AuditRecord struct {
	ID            string               `json:"id"`
	WorkflowID    string               `json:"workflow_id"`
	ExecutionID   string               `json:"execution_id,omitempty"`
	ExecutionType models.ExecutionType `json:"execution_type"`
	Success       bool                 `json:"success"`
	Error         string               `json:"error,omitempty"`
	Duration      time.Duration        `json:"duration"`
	CreatedAt     time.Time            `json:"created_at"`
}

type Persistence interface {
	SaveAuditRecord(ctx context.Context, record *AuditRecord) error
	AuditRecords(ctx context.Context, workflowID string, limit int) ([]*AuditRecord, error)
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
