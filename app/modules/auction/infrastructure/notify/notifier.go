// Package notify publishes best-effort auction notifications on the event bus.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	auctionservice "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/application"
	"github.com/Black-And-White-Club/bulk-auction/internal/eventbus"
	"github.com/ThreeDotsLabs/watermill/message"
)

const topicPrefix = "auction.notify."

// Topic returns the bus topic for a notification kind.
func Topic(kind string) string {
	return topicPrefix + kind
}

// Envelope is the published message body.
type Envelope struct {
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// BusNotifier implements the service Notifier on a watermill publisher.
type BusNotifier struct {
	publisher message.Publisher
	now       func() time.Time
}

var _ auctionservice.Notifier = (*BusNotifier)(nil)

// NewBusNotifier creates a BusNotifier.
func NewBusNotifier(publisher message.Publisher) *BusNotifier {
	return &BusNotifier{publisher: publisher, now: func() time.Time { return time.Now().UTC() }}
}

func (n *BusNotifier) Notify(ctx context.Context, kind string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}
	data, err := json.Marshal(Envelope{Kind: kind, Payload: body, OccurredAt: n.now()})
	if err != nil {
		return fmt.Errorf("failed to marshal %s envelope: %w", kind, err)
	}
	if err := n.publisher.Publish(Topic(kind), eventbus.NewMessage(ctx, data)); err != nil {
		return fmt.Errorf("failed to publish %s: %w", kind, err)
	}
	return nil
}
