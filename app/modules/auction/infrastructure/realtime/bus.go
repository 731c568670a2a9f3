package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	auctionservice "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/application"
	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	"github.com/Black-And-White-Club/bulk-auction/internal/eventbus"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
)

// TopicRoundEvents is the bus topic every instance relays into its hub.
const TopicRoundEvents = "auction.round.events"

const metadataRoundID = "round_id"

// BusBroadcaster publishes round events on the event bus.
type BusBroadcaster struct {
	publisher message.Publisher
}

var _ auctionservice.Broadcaster = (*BusBroadcaster)(nil)

// NewBusBroadcaster creates a BusBroadcaster.
func NewBusBroadcaster(publisher message.Publisher) *BusBroadcaster {
	return &BusBroadcaster{publisher: publisher}
}

// Broadcast publishes ev on TopicRoundEvents.
func (b *BusBroadcaster) Broadcast(ctx context.Context, ev auctiondomain.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal round event: %w", err)
	}
	msg := eventbus.NewMessage(ctx, payload)
	msg.Metadata.Set(metadataRoundID, ev.RoundID)
	if err := b.publisher.Publish(TopicRoundEvents, msg); err != nil {
		return fmt.Errorf("failed to publish round event: %w", err)
	}
	return nil
}

// RelayHandler returns a watermill handler that delivers bus events into the
// local hub. Malformed messages are logged and acked.
func RelayHandler(hub *Hub, logger *slog.Logger) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		ctx := msg.Context()
		roundID := msg.Metadata.Get(metadataRoundID)
		if roundID == "" {
			var ev auctiondomain.Event
			if err := json.Unmarshal(msg.Payload, &ev); err != nil || ev.RoundID == "" {
				logger.WarnContext(ctx, "Discarding malformed round event",
					attr.String("message_id", msg.UUID),
				)
				return nil
			}
			roundID = ev.RoundID
		}
		hub.DeliverRaw(ctx, roundID, msg.Payload)
		return nil
	}
}
