// Package main provides the Flowbridge monitoring daemon.
package main

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/dukex/flowbridge/pkg/eventbus"
	"github.com/dukex/flowbridge/pkg/events"
	"github.com/dukex/flowbridge/pkg/models"
)

// SnapshotSource produces live monitoring snapshots.
type SnapshotSource interface {
	Snapshot(ctx context.Context, workflowID string) (*models.LiveMonitoring, error)
}

// Poller periodically aggregates live monitoring for a fixed set of workflows
// and publishes the snapshots for downstream consumers.
type Poller struct {
	monitor     SnapshotSource
	events      eventbus.EventPublisher
	workflowIDs []string
	schedule    string
	logger      *slog.Logger
	cron        *cron.Cron
}

func NewPoller(
	monitor SnapshotSource,
	publisher eventbus.EventPublisher,
	workflowIDs []string,
	schedule string,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		monitor:     monitor,
		events:      publisher,
		workflowIDs: workflowIDs,
		schedule:    schedule,
		logger:      logger,
		cron:        cron.New(),
	}
}

// Start schedules the polling loop and runs one immediate poll so consumers
// do not wait a full interval for the first snapshot.
func (p *Poller) Start(ctx context.Context) error {
	_, err := p.cron.AddFunc(p.schedule, func() {
		p.poll(ctx)
	})
	if err != nil {
		return err
	}

	p.poll(ctx)
	p.cron.Start()

	return nil
}

// Stop halts the schedule and waits for a running poll to finish.
func (p *Poller) Stop() {
	<-p.cron.Stop().Done()
}

func (p *Poller) poll(ctx context.Context) {
	for _, workflowID := range p.workflowIDs {
		snapshot, err := p.monitor.Snapshot(ctx, workflowID)
		if err != nil {
			p.logger.WarnContext(ctx, "Failed to aggregate monitoring snapshot",
				"workflow_id", workflowID, "error", err)

			continue
		}

		event := events.MonitoringSnapshot{
			BaseEvent: events.NewBaseEvent(events.MonitoringSnapshotEvent, workflowID),
			Snapshot:  snapshot,
		}

		err = p.events.Publish(ctx, workflowID, event)
		if err != nil {
			p.logger.WarnContext(ctx, "Failed to publish monitoring snapshot",
				"workflow_id", workflowID, "error", err)
		}
	}
}
