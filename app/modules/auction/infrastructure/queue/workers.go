package auctionqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	auctionservice "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/application"
	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	auctiondb "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/repositories"
	"github.com/Black-And-White-Club/bulk-auction/internal/eventbus"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/uptrace/bun"
)

// RosterSink receives settled roster assignments.
type RosterSink interface {
	PublishAssignments(ctx context.Context, roundID string, assignments []auctiondomain.RosterAssignment) error
}

// RoundActivationWorker publishes an activation command when a scheduled
// round reaches its start time. The router performs the transition so the
// round is re-read under lock.
type RoundActivationWorker struct {
	river.WorkerDefaults[RoundActivationJob]
	logger    *slog.Logger
	publisher message.Publisher
}

// NewRoundActivationWorker creates a RoundActivationWorker.
func NewRoundActivationWorker(logger *slog.Logger, publisher message.Publisher) *RoundActivationWorker {
	return &RoundActivationWorker{logger: logger, publisher: publisher}
}

// Work publishes the activation command.
func (w *RoundActivationWorker) Work(ctx context.Context, job *river.Job[RoundActivationJob]) error {
	if _, err := uuid.Parse(job.Args.RoundID); err != nil {
		w.logger.ErrorContext(ctx, "Discarding activation job with invalid round id",
			attr.Int64("job_id", job.ID),
			attr.String("round_id", job.Args.RoundID),
		)
		return river.JobCancel(fmt.Errorf("invalid round id %q: %w", job.Args.RoundID, err))
	}

	cmd := ActivateRoundCommand{RoundID: job.Args.RoundID}
	if job.JobRow != nil {
		cmd.ScheduledFor = job.ScheduledAt
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal activation command: %w", err)
	}

	ctx, _ = attr.EnsureCorrelationID(ctx)
	if err := w.publisher.Publish(TopicActivateRound, eventbus.NewMessage(ctx, payload)); err != nil {
		w.logger.ErrorContext(ctx, "Failed to publish activation command",
			attr.String("round_id", job.Args.RoundID),
			attr.Error(err),
		)
		return fmt.Errorf("failed to publish activation command: %w", err)
	}

	w.logger.InfoContext(ctx, "Published round activation command",
		attr.ExtractCorrelationID(ctx),
		attr.String("round_id", job.Args.RoundID),
	)
	return nil
}

// RoundReader loads a round outside of any transaction.
type RoundReader interface {
	GetRound(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*auctiondb.Round, error)
}

// RoundClosingWorker tells operators a round is past its end time.
type RoundClosingWorker struct {
	river.WorkerDefaults[RoundClosingJob]
	logger   *slog.Logger
	rounds   RoundReader
	notifier auctionservice.Notifier
}

// NewRoundClosingWorker creates a RoundClosingWorker.
func NewRoundClosingWorker(logger *slog.Logger, rounds RoundReader, notifier auctionservice.Notifier) *RoundClosingWorker {
	return &RoundClosingWorker{logger: logger, rounds: rounds, notifier: notifier}
}

// Work sends the round_closeable notification while the round is still active.
func (w *RoundClosingWorker) Work(ctx context.Context, job *river.Job[RoundClosingJob]) error {
	roundID, err := uuid.Parse(job.Args.RoundID)
	if err != nil {
		return river.JobCancel(fmt.Errorf("invalid round id %q: %w", job.Args.RoundID, err))
	}

	round, err := w.rounds.GetRound(ctx, nil, roundID)
	switch {
	case errors.Is(err, auctiondb.ErrNotFound):
		w.logger.InfoContext(ctx, "Skipping close reminder for missing round", attr.String("round_id", job.Args.RoundID))
		return nil
	case err != nil:
		return fmt.Errorf("failed to load round: %w", err)
	case round.Status != auctiondomain.RoundStatusActive:
		w.logger.InfoContext(ctx, "Skipping close reminder",
			attr.String("round_id", job.Args.RoundID),
			attr.String("status", string(round.Status)),
		)
		return nil
	}

	notice := RoundCloseableNotice{RoundID: job.Args.RoundID, EndTime: job.Args.EndTime}
	if err := w.notifier.Notify(ctx, auctionservice.NotifyRoundCloseable, notice); err != nil {
		w.logger.WarnContext(ctx, "Failed to send round closeable notification",
			attr.String("round_id", job.Args.RoundID),
			attr.Error(err),
		)
		return err
	}
	return nil
}

// RosterSyncWorker forwards settled assignments to the roster sink.
type RosterSyncWorker struct {
	river.WorkerDefaults[RosterSyncJob]
	logger *slog.Logger
	sink   RosterSink
}

// NewRosterSyncWorker creates a RosterSyncWorker.
func NewRosterSyncWorker(logger *slog.Logger, sink RosterSink) *RosterSyncWorker {
	return &RosterSyncWorker{logger: logger, sink: sink}
}

// Work publishes the assignments. Retries are safe: consumers key on
// (round_id, player_id).
func (w *RosterSyncWorker) Work(ctx context.Context, job *river.Job[RosterSyncJob]) error {
	if len(job.Args.Assignments) == 0 {
		return nil
	}
	if err := w.sink.PublishAssignments(ctx, job.Args.RoundID, job.Args.Assignments); err != nil {
		w.logger.WarnContext(ctx, "Roster sync failed",
			attr.String("round_id", job.Args.RoundID),
			attr.Int("assignments", len(job.Args.Assignments)),
			attr.Error(err),
		)
		return fmt.Errorf("failed to publish roster assignments: %w", err)
	}
	w.logger.InfoContext(ctx, "Roster assignments delivered",
		attr.String("round_id", job.Args.RoundID),
		attr.Int("assignments", len(job.Args.Assignments)),
	)
	return nil
}
