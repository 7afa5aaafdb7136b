package conversation

import (
	"context"
	"log/slog"
	"sort"

	"github.com/dukex/flowbridge/pkg/models"
)

// DetailFetcher is the slice of the engine client used to hydrate
// executions that arrived without their result tree.
type DetailFetcher interface {
	GetExecutionDetail(ctx context.Context, executionID string, includeData bool) (*models.Execution, error)
}

// Reconstructor rebuilds ordered conversation turns from a batch of
// executions belonging to one logical session.
type Reconstructor struct {
	details DetailFetcher
	logger  *slog.Logger
}

// NewReconstructor builds a reconstructor. details may be nil when callers
// always supply hydrated executions.
func NewReconstructor(details DetailFetcher, logger *slog.Logger) *Reconstructor {
	return &Reconstructor{
		details: details,
		logger:  logger.With("module", "conversation"),
	}
}

// Reconstruct emits one turn per execution, in ascending StartedAt order
// regardless of input order. It never fails: hydration errors and malformed
// result trees degrade to placeholder turns so the conversation always
// renders.
func (r *Reconstructor) Reconstruct(ctx context.Context, executions []*models.Execution) []models.ConversationTurn {
	ordered := make([]*models.Execution, len(executions))
	copy(ordered, executions)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartedAt.Before(ordered[j].StartedAt)
	})

	turns := make([]models.ConversationTurn, 0, len(ordered))

	for _, execution := range ordered {
		result := r.hydrate(ctx, execution)

		turn := models.ConversationTurn{
			ExecutionID: string(execution.ID),
			Input:       ExtractInput(anyResult(result)),
			Output:      ExtractOutput(anyResult(result)),
			Timestamp:   execution.StartedAt,
			Status:      execution.Status,
		}

		if duration, ok := execution.Duration(); ok {
			turn.Duration = FormatDuration(duration)
		}

		turns = append(turns, turn)
	}

	return turns
}

// hydrate returns the execution's result tree, fetching detail when the
// batch listing did not include it. A failed fetch is logged and treated as
// "no result".
func (r *Reconstructor) hydrate(ctx context.Context, execution *models.Execution) map[string]any {
	if len(execution.Result) > 0 || r.details == nil {
		return execution.Result
	}

	detail, err := r.details.GetExecutionDetail(ctx, string(execution.ID), true)
	if err != nil {
		r.logger.WarnContext(ctx, "Could not hydrate execution result, rendering placeholders",
			"execution_id", execution.ID, "error", err)

		return nil
	}

	return detail.Result
}

// anyResult keeps a typed nil map from masquerading as a non-nil any.
func anyResult(result map[string]any) any {
	if result == nil {
		return nil
	}

	return result
}
