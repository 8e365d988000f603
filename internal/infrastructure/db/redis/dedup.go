package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// WebhookDedup provides webhook idempotency checks backed by Redis.
// Key format: webhook:<event>:<reference>
type WebhookDedup struct {
	client *redis.Client
}

// NewWebhookDedup creates a WebhookDedup wrapping the given Redis client.
func NewWebhookDedup(client *redis.Client) *WebhookDedup {
	return &WebhookDedup{client: client}
}

// IsDuplicate reports whether this event delivery has already been processed.
func (d *WebhookDedup) IsDuplicate(ctx context.Context, event, reference string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(event, reference)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this delivery has been processed (expires after dedupTTL).
func (d *WebhookDedup) Mark(ctx context.Context, event, reference string) error {
	return d.client.Set(ctx, d.key(event, reference), "1", dedupTTL).Err()
}

func (d *WebhookDedup) key(event, reference string) string {
	return fmt.Sprintf("webhook:%s:%s", event, reference)
}
