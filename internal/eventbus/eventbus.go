// Package eventbus builds the watermill publisher/subscriber pair used for
// realtime relay, internal commands and outbound notifications.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nkeys"
)

const (
	BackendNATS   = "nats"
	BackendMemory = "memory"
)

// EventBus publishes and subscribes watermill messages.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

// Config selects and configures the transport.
type Config struct {
	Backend  string
	URL      string
	NKeySeed string
}

type natsBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger
}

// New connects the configured backend. The NATS backend runs on core NATS
// subjects; delivery is at-most-once.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch cfg.Backend {
	case "", BackendMemory:
		logger.InfoContext(ctx, "Using in-process event bus")
		return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, wmLogger), nil
	case BackendNATS:
	default:
		return nil, fmt.Errorf("unknown event bus backend %q", cfg.Backend)
	}

	opts, err := natsOptions(cfg)
	if err != nil {
		return nil, err
	}

	marshaler := &wmnats.NATSMarshaler{}
	jsConfig := wmnats.JetStreamConfig{Disabled: true}

	publisher, err := wmnats.NewPublisher(wmnats.PublisherConfig{
		URL:         cfg.URL,
		Marshaler:   marshaler,
		NatsOptions: opts,
		JetStream:   jsConfig,
	}, wmLogger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create NATS publisher", attr.Error(err))
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(wmnats.SubscriberConfig{
		URL:              cfg.URL,
		Unmarshaler:      marshaler,
		NatsOptions:      opts,
		JetStream:        jsConfig,
		SubscribersCount: 1,
		CloseTimeout:     10 * time.Second,
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		logger.ErrorContext(ctx, "Failed to create NATS subscriber", attr.Error(err))
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	logger.InfoContext(ctx, "Connected event bus to NATS", attr.String("url", cfg.URL))
	return &natsBus{publisher: publisher, subscriber: subscriber, logger: logger}, nil
}

func natsOptions(cfg Config) ([]nc.Option, error) {
	opts := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Name("bulk-auction"),
	}
	if cfg.NKeySeed == "" {
		return opts, nil
	}

	kp, err := nkeys.FromSeed([]byte(cfg.NKeySeed))
	if err != nil {
		return nil, fmt.Errorf("failed to parse nkey seed: %w", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive nkey public key: %w", err)
	}
	return append(opts, nc.Nkey(pub, kp.Sign)), nil
}

func (b *natsBus) Publish(topic string, messages ...*message.Message) error {
	return b.publisher.Publish(topic, messages...)
}

func (b *natsBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.subscriber.Subscribe(ctx, topic)
}

func (b *natsBus) Close() error {
	pubErr := b.publisher.Close()
	subErr := b.subscriber.Close()
	if pubErr != nil {
		return pubErr
	}
	return subErr
}

// NewRouter creates a watermill router with recovery and correlation middleware.
func NewRouter(logger *slog.Logger) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create watermill router: %w", err)
	}
	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)
	return router, nil
}

// NewMessage builds a message carrying the correlation ID from ctx.
func NewMessage(ctx context.Context, payload []byte) *message.Message {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if id := attr.CorrelationIDFromContext(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	}
	return msg
}
