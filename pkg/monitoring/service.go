package monitoring

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukex/flowbridge/pkg/models"
)

const defaultFetchLimit = 50

// ExecutionLister is the slice of the engine client the monitoring service
// needs.
type ExecutionLister interface {
	GetExecutions(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error)
}

// Service serves monitoring snapshots, optionally short-circuiting through
// the snapshot cache.
type Service struct {
	executions ExecutionLister
	cache      *SnapshotCache
	fetchLimit int
	logger     *slog.Logger
	now        func() time.Time
}

// NewService builds a monitoring service. cache may be nil.
func NewService(executions ExecutionLister, cache *SnapshotCache, logger *slog.Logger) *Service {
	return &Service{
		executions: executions,
		cache:      cache,
		fetchLimit: defaultFetchLimit,
		logger:     logger.With("module", "monitoring"),
		now:        time.Now,
	}
}

// Snapshot returns the current live monitoring view for a workflow. Each
// call produces an independent snapshot; the caller replaces any previous
// one wholesale.
func (s *Service) Snapshot(ctx context.Context, workflowID string) (*models.LiveMonitoring, error) {
	if s.cache != nil {
		if snapshot, ok := s.cache.Get(ctx, workflowID); ok {
			return snapshot, nil
		}
	}

	executions, err := s.executions.GetExecutions(ctx, workflowID, s.fetchLimit)
	if err != nil {
		return nil, err
	}

	snapshot := Aggregate(workflowID, executions, s.now())

	if s.cache != nil {
		s.cache.Set(ctx, snapshot)
	}

	return snapshot, nil
}
