package file

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowbridge/pkg/models"
	"github.com/dukex/flowbridge/pkg/persistence"
)

func newTestRecord(id, workflowID string, createdAt time.Time) *persistence.AuditRecord {
	return &persistence.AuditRecord{
		ID:            id,
		WorkflowID:    workflowID,
		ExecutionID:   "exec-" + id,
		ExecutionType: models.ExecutionTypeWebhook,
		Success:       true,
		Duration:      150 * time.Millisecond,
		CreatedAt:     createdAt,
	}
}

func TestSaveAndListAuditRecords(t *testing.T) {
	p := NewPersistence(t.TempDir())
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, p.SaveAuditRecord(ctx, newTestRecord("a", "wf-1", base)))
	require.NoError(t, p.SaveAuditRecord(ctx, newTestRecord("b", "wf-1", base.Add(time.Minute))))
	require.NoError(t, p.SaveAuditRecord(ctx, newTestRecord("c", "wf-2", base)))

	records, err := p.AuditRecords(ctx, "wf-1", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "b", records[0].ID)
	assert.Equal(t, "a", records[1].ID)
	assert.Equal(t, models.ExecutionTypeWebhook, records[0].ExecutionType)
}

func TestAuditRecordsLimit(t *testing.T) {
	p := NewPersistence(t.TempDir())
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, p.SaveAuditRecord(ctx, newTestRecord(id, "wf-1", base.Add(time.Duration(i)*time.Minute))))
	}

	records, err := p.AuditRecords(ctx, "wf-1", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c", records[0].ID)
}

func TestAuditRecordsUnknownWorkflow(t *testing.T) {
	p := NewPersistence(t.TempDir())

	records, err := p.AuditRecords(context.Background(), "missing", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSaveRejectsInvalidRecord(t *testing.T) {
	p := NewPersistence(t.TempDir())

	err := p.SaveAuditRecord(context.Background(), &persistence.AuditRecord{WorkflowID: "wf-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrInvalidAuditRecord)
}

func TestFileURLPrefixStripped(t *testing.T) {
	dir := t.TempDir()
	p := NewPersistence("file://" + dir)

	require.NoError(t, p.HealthCheck(context.Background()))
}
