// Package file provides file-based persistence for execution audit records.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dukex/flowbridge/pkg/persistence"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// Persistence implements persistence.Persistence on top of the file system.
// Each audit record is a JSON file under <root>/audit/<workflow-id>/.
type Persistence struct {
	root string
}

func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{root: cleanRoot}
}

func (p *Persistence) SaveAuditRecord(ctx context.Context, record *persistence.AuditRecord) error {
	if record.ID == "" || record.WorkflowID == "" {
		return &persistence.AuditError{Op: "Save", WorkflowID: record.WorkflowID, Err: persistence.ErrInvalidAuditRecord}
	}

	dir := filepath.Join(p.root, "audit", record.WorkflowID)

	err := os.MkdirAll(dir, dirPermissions)
	if err != nil {
		return &persistence.AuditError{Op: "Save", WorkflowID: record.WorkflowID, Err: err}
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return &persistence.AuditError{Op: "Save", WorkflowID: record.WorkflowID, Err: err}
	}

	path := filepath.Join(dir, record.ID+".json")

	err = os.WriteFile(path, data, filePermissions)
	if err != nil {
		return &persistence.AuditError{Op: "Save", WorkflowID: record.WorkflowID, Err: err}
	}

	return nil
}

// AuditRecords returns the most recent records for a workflow, newest first.
func (p *Persistence) AuditRecords(ctx context.Context, workflowID string, limit int) ([]*persistence.AuditRecord, error) {
	dir := filepath.Join(p.root, "audit", workflowID)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []*persistence.AuditRecord{}, nil
	}

	if err != nil {
		return nil, &persistence.AuditError{Op: "List", WorkflowID: workflowID, Err: err}
	}

	records := make([]*persistence.AuditRecord, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, &persistence.AuditError{Op: "List", WorkflowID: workflowID, Err: err}
		}

		var record persistence.AuditRecord

		err = json.Unmarshal(data, &record)
		if err != nil {
			return nil, &persistence.AuditError{Op: "List", WorkflowID: workflowID, Err: fmt.Errorf("corrupt record %s: %w", entry.Name(), err)}
		}

		records = append(records, &record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file-based persistence, there is
// nothing to clean up.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}
