package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const eventKeyPrefix = "trigger:event:"

// EventGuard drops redelivered trigger events. The hosting runtime delivers
// at least once, so the first delivery of an event id claims it in Redis.
type EventGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEventGuard(client *redis.Client, ttl time.Duration) *EventGuard {
	return &EventGuard{client: client, ttl: ttl}
}

// Acquire claims kind/eventID. It returns false when the event was already
// claimed by an earlier delivery.
func (g *EventGuard) Acquire(ctx context.Context, kind, eventID string) (bool, error) {
	if g == nil || g.client == nil {
		return true, nil
	}
	ok, err := g.client.SetNX(ctx, eventKey(kind, eventID), time.Now().Unix(), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim event %s: %w", eventID, err)
	}
	return ok, nil
}

// Release frees a claim so the host can retry an event that failed.
func (g *EventGuard) Release(ctx context.Context, kind, eventID string) error {
	if g == nil || g.client == nil {
		return nil
	}
	if err := g.client.Del(ctx, eventKey(kind, eventID)).Err(); err != nil {
		return fmt.Errorf("release event %s: %w", eventID, err)
	}
	return nil
}

func eventKey(kind, eventID string) string {
	return eventKeyPrefix + kind + ":" + eventID
}
