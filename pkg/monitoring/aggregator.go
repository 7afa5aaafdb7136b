// Package monitoring turns raw execution lists into live, wholesale
// monitoring snapshots.
package monitoring

import (
	"math"
	"time"

	"github.com/dukex/flowbridge/pkg/models"
)

// Coarse estimate reported while an execution runs and the engine provides
// no finer-grained progress.
// TODO: derive progress from executed node counts once the engine detail
// endpoint exposes per-node completion.
const defaultRunningProgress = 50

const recentExecutionsLimit = 10

// Aggregate builds a LiveMonitoring snapshot from an execution batch the
// engine returned most-recent-first. Each snapshot replaces the previous one
// wholesale. Malformed executions are excluded from numeric aggregates, never
// fail the whole computation.
func Aggregate(workflowID string, executions []*models.Execution, now time.Time) *models.LiveMonitoring {
	snapshot := &models.LiveMonitoring{
		WorkflowID:       workflowID,
		RecentExecutions: []models.ExecutionSummary{},
		GeneratedAt:      now,
	}

	var totalToday, successToday, errorsToday int

	var durationSum time.Duration

	var durationCount int

	for _, execution := range executions {
		summary := summarize(execution)

		if execution.IsRunning() && snapshot.CurrentExecution == nil {
			// At most one execution is treated as current; the first running
			// one in the batch is authoritative.
			snapshot.IsRunning = true
			current := summary
			snapshot.CurrentExecution = &current
		}

		if len(snapshot.RecentExecutions) < recentExecutionsLimit {
			snapshot.RecentExecutions = append(snapshot.RecentExecutions, summary)
		}

		if sameCalendarDay(execution.StartedAt, now) {
			totalToday++

			switch execution.Status {
			case models.ExecutionStatusSuccess:
				successToday++
			case models.ExecutionStatusError:
				errorsToday++
			}
		}

		if duration, ok := execution.Duration(); ok {
			durationSum += duration
			durationCount++
		}
	}

	snapshot.Metrics = models.MonitoringMetrics{
		ExecutionsToday: totalToday,
		ErrorCount:      errorsToday,
	}

	if totalToday > 0 {
		snapshot.Metrics.SuccessRate = int(math.Round(float64(successToday) / float64(totalToday) * 100))
	}

	if durationCount > 0 {
		snapshot.Metrics.AverageResponseTime = (durationSum / time.Duration(durationCount)).Milliseconds()
	}

	return snapshot
}

func summarize(execution *models.Execution) models.ExecutionSummary {
	progress := 100
	if execution.IsRunning() {
		progress = defaultRunningProgress
		if execution.Progress != nil {
			progress = *execution.Progress
		}
	}

	return models.ExecutionSummary{
		ID:        string(execution.ID),
		Status:    execution.Status,
		StartedAt: execution.StartedAt,
		StoppedAt: execution.StoppedAt,
		Progress:  progress,
	}
}

// sameCalendarDay compares calendar days in the reporting timezone, not a
// rolling 24h window.
func sameCalendarDay(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}

	aYear, aMonth, aDay := a.In(b.Location()).Date()
	bYear, bMonth, bDay := b.Date()

	return aYear == bYear && aMonth == bMonth && aDay == bDay
}
