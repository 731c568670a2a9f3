package auctionqueue

import (
	"context"
	"log/slog"
	"time"

	auctionservice "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/application"
	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
	"github.com/google/uuid"
)

// InlineScheduler is used when the queue is disabled. Roster sync runs
// synchronously; timed jobs are dropped, so scheduled rounds must be
// activated by hand.
type InlineScheduler struct {
	logger *slog.Logger
	sink   RosterSink
}

var _ auctionservice.JobScheduler = (*InlineScheduler)(nil)

// NewInlineScheduler creates an InlineScheduler.
func NewInlineScheduler(logger *slog.Logger, sink RosterSink) *InlineScheduler {
	return &InlineScheduler{logger: logger, sink: sink}
}

func (s *InlineScheduler) ScheduleActivation(ctx context.Context, roundID uuid.UUID, at time.Time) error {
	s.logger.WarnContext(ctx, "Queue disabled, scheduled activation will not run",
		attr.RoundID("round_id", roundID),
		attr.Time("start_time", at),
	)
	return nil
}

func (s *InlineScheduler) ScheduleCloseReminder(ctx context.Context, roundID uuid.UUID, at time.Time) error {
	s.logger.DebugContext(ctx, "Queue disabled, skipping close reminder",
		attr.RoundID("round_id", roundID),
		attr.Time("end_time", at),
	)
	return nil
}

func (s *InlineScheduler) EnqueueRosterSync(ctx context.Context, roundID uuid.UUID, assignments []auctiondomain.RosterAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return s.sink.PublishAssignments(ctx, roundID.String(), assignments)
}

func (s *InlineScheduler) CancelRoundJobs(context.Context, uuid.UUID) error { return nil }

// GetScheduledJobs reports no jobs; nothing is queued without river.
func (s *InlineScheduler) GetScheduledJobs(context.Context, uuid.UUID) ([]auctionservice.ScheduledJob, error) {
	return []auctionservice.ScheduledJob{}, nil
}
