package monitoring

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dukex/flowbridge/pkg/models"
)

const snapshotKeyPrefix = "flowbridge:monitoring:"

// DefaultSnapshotTTL matches the UI poll interval so a poll storm collapses
// onto one engine fetch without ever serving a stale interval.
const DefaultSnapshotTTL = 5 * time.Second

// SnapshotCache stores monitoring snapshots in Redis for a short TTL. The
// cache is strictly an optimization: every failure degrades to "not cached"
// and is never surfaced to the poller.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewSnapshotCache connects to Redis using a redis:// URL.
func NewSnapshotCache(redisURL string, ttl time.Duration, logger *slog.Logger) (*SnapshotCache, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}

	return &SnapshotCache{
		client: redis.NewClient(options),
		ttl:    ttl,
		logger: logger.With("module", "monitoring_cache"),
	}, nil
}

// Get returns the cached snapshot for a workflow, if any.
func (c *SnapshotCache) Get(ctx context.Context, workflowID string) (*models.LiveMonitoring, bool) {
	data, err := c.client.Get(ctx, snapshotKeyPrefix+workflowID).Bytes()
	if err != nil {
		return nil, false
	}

	snapshot := &models.LiveMonitoring{}
	if err := json.Unmarshal(data, snapshot); err != nil {
		c.logger.WarnContext(ctx, "Discarding undecodable cached snapshot", "workflow_id", workflowID, "error", err)

		return nil, false
	}

	return snapshot, true
}

// Set stores a snapshot with the cache TTL.
func (c *SnapshotCache) Set(ctx context.Context, snapshot *models.LiveMonitoring) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to encode snapshot for cache", "workflow_id", snapshot.WorkflowID, "error", err)

		return
	}

	err = c.client.Set(ctx, snapshotKeyPrefix+snapshot.WorkflowID, data, c.ttl).Err()
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to cache snapshot", "workflow_id", snapshot.WorkflowID, "error", err)
	}
}

// Close releases the Redis connection.
func (c *SnapshotCache) Close() error {
	return c.client.Close()
}
