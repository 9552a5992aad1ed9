package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// DedupChecker provides idempotency checks backed by Redis.
// Key format: dedup:<asset_id>:<category>:<file_hash>:<unix_timestamp>
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether this exact detection has already been processed.
func (d *DedupChecker) IsDuplicate(ctx context.Context, assetID, category, fileHash string, ts time.Time) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(assetID, category, fileHash, ts)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this detection has been processed (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, assetID, category, fileHash string, ts time.Time) error {
	return d.client.Set(ctx, d.key(assetID, category, fileHash, ts), "1", dedupTTL).Err()
}

func (d *DedupChecker) key(assetID, category, fileHash string, ts time.Time) string {
	return fmt.Sprintf("dedup:%s:%s:%s:%d", assetID, category, fileHash, ts.Unix())
}
