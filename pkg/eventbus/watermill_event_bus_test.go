package eventbus_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowbridge/pkg/channels/gochannel"
	"github.com/dukex/flowbridge/pkg/eventbus"
	"github.com/dukex/flowbridge/pkg/events"
	"github.com/dukex/flowbridge/pkg/models"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	pub, sub, err := gochannel.CreateTestChannel(watermill.NewSlogLogger(logger))
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestPublishAndHandle(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan any, 1)

	err := bus.Handle(events.ExecutionCompletedEvent, func(_ context.Context, event any) error {
		received <- event

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	event := events.ExecutionCompleted{
		BaseEvent:     events.NewBaseEvent(events.ExecutionCompletedEvent, "wf-1"),
		ExecutionID:   "exec-1",
		ExecutionType: models.ExecutionTypeManual,
		Duration:      120 * time.Millisecond,
	}
	require.NoError(t, bus.Publish(ctx, "wf-1", event))

	select {
	case got := <-received:
		completed, ok := got.(*events.ExecutionCompleted)
		require.True(t, ok)
		assert.Equal(t, "wf-1", completed.WorkflowID)
		assert.Equal(t, "exec-1", completed.ExecutionID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestUnhandledEventTypeIsAcked(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan any, 1)

	err := bus.Handle(events.ExecutionFailedEvent, func(_ context.Context, event any) error {
		received <- event

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	// A snapshot event has no handler registered; it must not block the
	// subscriber loop.
	snapshot := events.MonitoringSnapshot{
		BaseEvent: events.NewBaseEvent(events.MonitoringSnapshotEvent, "wf-1"),
		Snapshot:  &models.LiveMonitoring{WorkflowID: "wf-1"},
	}
	require.NoError(t, bus.Publish(ctx, "wf-1", snapshot))

	failed := events.ExecutionFailed{
		BaseEvent:     events.NewBaseEvent(events.ExecutionFailedEvent, "wf-1"),
		ExecutionType: models.ExecutionTypeWebhook,
		Error:         "engine unreachable",
	}
	require.NoError(t, bus.Publish(ctx, "wf-1", failed))

	select {
	case got := <-received:
		event, ok := got.(*events.ExecutionFailed)
		require.True(t, ok)
		assert.Equal(t, "engine unreachable", event.Error)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestGenerateID(t *testing.T) {
	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
