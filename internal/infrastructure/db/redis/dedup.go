package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// DedupChecker provides idempotency checks for activity events backed by
// Redis. Key format: activity:<actor>:<action>:<resource>:<unix_timestamp>
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether this exact event has already been recorded.
func (d *DedupChecker) IsDuplicate(ctx context.Context, actorID, action, resourceID string, ts time.Time) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(actorID, action, resourceID, ts)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this event has been processed (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, actorID, action, resourceID string, ts time.Time) error {
	return d.client.Set(ctx, d.key(actorID, action, resourceID, ts), "1", dedupTTL).Err()
}

func (d *DedupChecker) key(actorID, action, resourceID string, ts time.Time) string {
	return fmt.Sprintf("activity:%s:%s:%s:%d", actorID, action, resourceID, ts.Unix())
}
