// Package notifications publishes contact lifecycle events to Redis for downstream consumers.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"driverquote/internal/middleware"
	"driverquote/internal/models"

	"github.com/redis/go-redis/v9"
)

// ContactEventsChannel carries every contact lifecycle event.
const ContactEventsChannel = "contacts:events"

// Event types published on ContactEventsChannel.
const (
	EventContactCreated       = "contact.created"
	EventContactStatusChanged = "contact.status_changed"
	EventContactDeleted       = "contact.deleted"
)

// ContactEvent is the JSON payload published for each lifecycle change.
type ContactEvent struct {
	Type          string               `json:"type"`
	ContactID     uint                 `json:"contactId"`
	Reference     string               `json:"reference"`
	Status        models.ContactStatus `json:"status,omitempty"`
	TypeAssurance models.InsuranceType `json:"typeAssurance,omitempty"`
	OccurredAt    time.Time            `json:"occurredAt"`
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish sends ev on ContactEventsChannel. A nil client is a no-op.
func (n *Notifier) Publish(ctx context.Context, ev ContactEvent) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if ev.Reference == "" {
		ev.Reference = models.FormatReference(ev.ContactID)
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.rdb.Publish(ctx, ContactEventsChannel, string(payload)).Err()
}

// ContactCreated publishes the creation of c.
func (n *Notifier) ContactCreated(ctx context.Context, c *models.ContactRequest) error {
	return n.Publish(ctx, ContactEvent{
		Type:          EventContactCreated,
		ContactID:     c.ID,
		Status:        c.Status,
		TypeAssurance: c.TypeAssurance,
	})
}

// ContactStatusChanged publishes a lifecycle transition of c.
func (n *Notifier) ContactStatusChanged(ctx context.Context, c *models.ContactRequest) error {
	return n.Publish(ctx, ContactEvent{
		Type:      EventContactStatusChanged,
		ContactID: c.ID,
		Status:    c.Status,
	})
}

// ContactDeleted publishes the removal of the contact with the given id.
func (n *Notifier) ContactDeleted(ctx context.Context, id uint) error {
	return n.Publish(ctx, ContactEvent{
		Type:      EventContactDeleted,
		ContactID: id,
	})
}

// Subscribe listens on ContactEventsChannel until ctx is cancelled and calls
// onEvent for every decodable event. Undecodable payloads are logged and skipped.
func (n *Notifier) Subscribe(ctx context.Context, onEvent func(ContactEvent)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, ContactEventsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", ContactEventsChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev ContactEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					middleware.Logger.Warn("dropping malformed contact event", "error", err)
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in contact event subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onEvent(ev)
				}()
			}
		}
	}()

	return nil
}
