package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	auctionservice "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/application"
	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
	"github.com/redis/go-redis/v9"
)

const redisChannelPrefix = "auction:round:"

// RedisChannel is the pub/sub channel of one round.
func RedisChannel(roundID string) string {
	return redisChannelPrefix + roundID
}

// RedisBroadcaster publishes round events on per-round Redis channels.
type RedisBroadcaster struct {
	client *redis.Client
}

var _ auctionservice.Broadcaster = (*RedisBroadcaster)(nil)

// NewRedisBroadcaster creates a RedisBroadcaster.
func NewRedisBroadcaster(client *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{client: client}
}

// Broadcast publishes ev on the round's channel.
func (b *RedisBroadcaster) Broadcast(ctx context.Context, ev auctiondomain.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal round event: %w", err)
	}
	return b.client.Publish(ctx, RedisChannel(ev.RoundID), payload).Err()
}

// RedisRelay delivers events from every round channel into the local hub.
type RedisRelay struct {
	client *redis.Client
	hub    *Hub
	logger *slog.Logger
}

// NewRedisRelay creates a RedisRelay.
func NewRedisRelay(client *redis.Client, hub *Hub, logger *slog.Logger) *RedisRelay {
	return &RedisRelay{client: client, hub: hub, logger: logger}
}

// Start subscribes and relays in the background until ctx is cancelled. It
// returns once the pattern subscription is confirmed.
func (r *RedisRelay) Start(ctx context.Context) error {
	sub := r.client.PSubscribe(ctx, redisChannelPrefix+"*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("failed to subscribe to round channels: %w", err)
	}

	ch := sub.Channel()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					r.logger.Warn("Redis relay channel closed")
					return
				}
				roundID := strings.TrimPrefix(msg.Channel, redisChannelPrefix)
				r.hub.DeliverRaw(ctx, roundID, []byte(msg.Payload))
			}
		}
	}()

	r.logger.InfoContext(ctx, "Redis realtime relay started", attr.String("pattern", redisChannelPrefix+"*"))
	return nil
}
