package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/enumverse/lrs-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATEMENT NOTIFIER
// ══════════════════════════════════════════════════════════════════════════════

// statementNotification is the wire form published on the channel.
type statementNotification struct {
	StatementID string    `json:"statement_id"`
	ActorID     string    `json:"actor_id"`
	ActorName   string    `json:"actor_name,omitempty"`
	VerbID      string    `json:"verb_id"`
	ActivityID  string    `json:"activity_id"`
	StoredAt    time.Time `json:"stored_at"`
}

// StatementNotifier publishes statement-creation notifications on a Redis
// pub/sub channel. It implements eventhandler.Notifier; delivery is best
// effort and carries no subscriber acknowledgement.
type StatementNotifier struct {
	cache   *Cache
	channel string
}

// NewStatementNotifier creates a notifier publishing on the given channel.
func NewStatementNotifier(cache *Cache, channel string) *StatementNotifier {
	if channel == "" {
		channel = "lrs:statements:created"
	}
	return &StatementNotifier{cache: cache, channel: channel}
}

// NotifyStatementCreated publishes the notification.
func (n *StatementNotifier) NotifyStatementCreated(ctx context.Context, event shared.StatementCreatedEvent) error {
	payload, err := json.Marshal(statementNotification{
		StatementID: event.StatementID,
		ActorID:     event.ActorID,
		ActorName:   event.ActorName,
		VerbID:      event.VerbID,
		ActivityID:  event.ActivityID,
		StoredAt:    event.OccurredAt(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if err := n.cache.Client().Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}

	return nil
}
