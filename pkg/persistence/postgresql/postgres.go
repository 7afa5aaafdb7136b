// Package postgresql provides PostgreSQL persistence for execution audit
// records.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/dukex/flowbridge/pkg/models"
	"github.com/dukex/flowbridge/pkg/persistence"
)

// Persistence implements the audit store on PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPersistence opens the database, pings it and ensures the schema exists.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	postgres := &Persistence{
		db:     database,
		logger: logger,
	}

	err = postgres.migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

func (p *Persistence) migrate(ctx context.Context) error {
	p.logger.InfoContext(ctx, "Ensuring audit schema")

	schema := `
		CREATE TABLE IF NOT EXISTS execution_audit (
			id TEXT PRIMARY KEY,
			workflow_id TEXT NOT NULL,
			execution_id TEXT,
			execution_type TEXT NOT NULL,
			success BOOLEAN NOT NULL,
			error TEXT,
			duration_ms BIGINT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_execution_audit_workflow
			ON execution_audit (workflow_id, created_at DESC);
	`

	_, err := p.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create execution_audit table: %w", err)
	}

	return nil
}

func (p *Persistence) SaveAuditRecord(ctx context.Context, record *persistence.AuditRecord) error {
	if record.ID == "" || record.WorkflowID == "" {
		return &persistence.AuditError{Op: "Save", WorkflowID: record.WorkflowID, Err: persistence.ErrInvalidAuditRecord}
	}

	query := `
		INSERT INTO execution_audit
			(id, workflow_id, execution_id, execution_type, success, error, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := p.db.ExecContext(ctx, query,
		record.ID,
		record.WorkflowID,
		record.ExecutionID,
		string(record.ExecutionType),
		record.Success,
		record.Error,
		record.Duration.Milliseconds(),
		record.CreatedAt,
	)
	if err != nil {
		return &persistence.AuditError{Op: "Save", WorkflowID: record.WorkflowID, Err: err}
	}

	return nil
}

// AuditRecords returns the most recent records for a workflow, newest first.
func (p *Persistence) AuditRecords(ctx context.Context, workflowID string, limit int) ([]*persistence.AuditRecord, error) {
	query := `
		SELECT id, workflow_id, execution_id, execution_type, success, error, duration_ms, created_at
		FROM execution_audit
		WHERE workflow_id = $1
		ORDER BY created_at DESC
	`

	args := []any{workflowID}

	if limit > 0 {
		query += " LIMIT $2"

		args = append(args, limit)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &persistence.AuditError{Op: "List", WorkflowID: workflowID, Err: err}
	}
	defer rows.Close()

	records := make([]*persistence.AuditRecord, 0)

	for rows.Next() {
		var (
			record     persistence.AuditRecord
			execType   string
			durationMS int64
		)

		err := rows.Scan(
			&record.ID,
			&record.WorkflowID,
			&record.ExecutionID,
			&execType,
			&record.Success,
			&record.Error,
			&durationMS,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, &persistence.AuditError{Op: "List", WorkflowID: workflowID, Err: err}
		}

		record.ExecutionType = models.ExecutionType(execType)
		record.Duration = time.Duration(durationMS) * time.Millisecond

		records = append(records, &record)
	}

	err = rows.Err()
	if err != nil {
		return nil, &persistence.AuditError{Op: "List", WorkflowID: workflowID, Err: err}
	}

	return records, nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
