package auctionrouter

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	auctionhandlers "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/handlers"
	auctionqueue "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/queue"
	"github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/realtime"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// AuctionRouter registers the auction module's watermill handlers.
type AuctionRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	tracer     trace.Tracer

	metricsBuilder *metrics.PrometheusMetricsBuilder
	metricsEnabled bool
}

// NewAuctionRouter creates a new AuctionRouter. Router metrics are skipped in
// the test environment so repeated registration does not panic.
func NewAuctionRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	tracer trace.Tracer,
	registry *prometheus.Registry,
) *AuctionRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if registry != nil && !inTestEnv {
		b := metrics.NewPrometheusMetricsBuilder(registry, "auction", "router")
		metricsBuilder = &b
	}

	return &AuctionRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
		metricsEnabled: metricsBuilder != nil,
	}
}

// Configure adds router metrics and registers the handlers. A nil hub skips
// the bus relay, which is the case when Redis carries realtime events.
func (r *AuctionRouter) Configure(_ context.Context, handlers auctionhandlers.Handlers, hub *realtime.Hub) error {
	if r.metricsEnabled && r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	registerCommand(r, auctionqueue.TopicActivateRound, handlers.HandleActivateRound)

	if hub != nil {
		r.Router.AddConsumerHandler(
			"auction."+realtime.TopicRoundEvents,
			realtime.TopicRoundEvents,
			r.subscriber,
			realtime.RelayHandler(hub, r.logger),
		)
	}
	return nil
}

// registerCommand registers a typed consumer handler. Undecodable payloads
// are logged and acked; handler errors nack the message.
func registerCommand[T any](r *AuctionRouter, topic string, handle func(context.Context, *T) error) {
	handlerName := "auction." + topic

	r.Router.AddConsumerHandler(handlerName, topic, r.subscriber, func(msg *message.Message) error {
		ctx := msg.Context()
		if id := middleware.MessageCorrelationID(msg); id != "" {
			ctx = attr.WithCorrelationID(ctx, id)
		}
		ctx, span := r.tracer.Start(ctx, handlerName, trace.WithAttributes(
			attribute.String("message.id", msg.UUID),
			attribute.String("message.topic", topic),
		))
		defer span.End()

		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			r.logger.ErrorContext(ctx, "Discarding undecodable message",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			span.SetStatus(codes.Error, "undecodable payload")
			return nil
		}

		if err := handle(ctx, &payload); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			r.logger.ErrorContext(ctx, "Handler failed",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.Error(err),
			)
			return err
		}
		return nil
	})
}

// Close shuts down the router.
func (r *AuctionRouter) Close() error {
	return r.Router.Close()
}
