package auctionhandlers

import (
	"context"
	"fmt"
	"log/slog"

	auctionservice "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/application"
	auctionqueue "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/queue"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// AuctionHandlers implements the Handlers interface.
type AuctionHandlers struct {
	service      auctionservice.Service
	streamer     RoundStreamer
	logger       *slog.Logger
	tracer       trace.Tracer
	defaultTrack string
}

// NewAuctionHandlers creates a new AuctionHandlers instance.
func NewAuctionHandlers(
	service auctionservice.Service,
	streamer RoundStreamer,
	logger *slog.Logger,
	tracer trace.Tracer,
	defaultTrack string,
) *AuctionHandlers {
	return &AuctionHandlers{
		service:      service,
		streamer:     streamer,
		logger:       logger,
		tracer:       tracer,
		defaultTrack: defaultTrack,
	}
}

var _ Handlers = (*AuctionHandlers)(nil)

// HandleActivateRound activates a scheduled round. Malformed commands are
// logged and dropped; infrastructure errors are returned so the message is
// redelivered where the transport supports it.
func (h *AuctionHandlers) HandleActivateRound(ctx context.Context, cmd *auctionqueue.ActivateRoundCommand) error {
	ctx, span := h.tracer.Start(ctx, "AuctionHandlers.HandleActivateRound")
	defer span.End()

	roundID, err := uuid.Parse(cmd.RoundID)
	if err != nil {
		h.logger.WarnContext(ctx, "Invalid round id in activation command",
			attr.ExtractCorrelationID(ctx),
			attr.String("round_id", cmd.RoundID),
		)
		return nil
	}

	round, err := h.service.ActivateScheduledRound(ctx, roundID)
	if err != nil {
		if code := auctionservice.CodeOf(err); code != "" {
			h.logger.WarnContext(ctx, "Scheduled activation rejected",
				attr.ExtractCorrelationID(ctx),
				attr.String("round_id", cmd.RoundID),
				attr.String("code", string(code)),
				attr.Error(err),
			)
			return nil
		}
		return fmt.Errorf("failed to activate scheduled round %s: %w", cmd.RoundID, err)
	}

	h.logger.InfoContext(ctx, "Scheduled activation handled",
		attr.ExtractCorrelationID(ctx),
		attr.String("round_id", cmd.RoundID),
		attr.String("status", string(round.Status)),
	)
	return nil
}
