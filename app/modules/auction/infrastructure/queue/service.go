package auctionqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	auctionservice "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/application"
	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"
)

const component = "river"

// QueueService schedules and cancels round jobs.
type QueueService interface {
	auctionservice.JobScheduler
	// HealthCheck verifies the queue service is healthy
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Deps are the collaborators the workers call.
type Deps struct {
	Publisher  message.Publisher
	Rounds     RoundReader
	Notifier   auctionservice.Notifier
	RosterSink RosterSink
}

// Service handles job scheduling for the auction module using River
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	db      *bun.DB
	metrics metrics.AuctionMetrics
}

// NewService creates a River-backed queue service. River requires pgx, so it
// gets its own pool alongside the bun connection.
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, maxWorkers int, m metrics.AuctionMetrics, deps Deps) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_auction_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	m.RecordOperationAttempt(ctx, "initialize_service", component)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		ctxLogger.Error("Failed to parse DSN for River", attr.Error(err))
		m.RecordOperationFailure(ctx, "initialize_service", component)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		ctxLogger.Error("Failed to create pgx pool for River", attr.Error(err))
		m.RecordOperationFailure(ctx, "initialize_service", component)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		m.RecordOperationFailure(ctx, "initialize_service", component)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewRoundActivationWorker(ctxLogger, deps.Publisher))
	river.AddWorker(workers, NewRoundClosingWorker(ctxLogger, deps.Rounds, deps.Notifier))
	river.AddWorker(workers, NewRosterSyncWorker(ctxLogger, deps.RosterSink))

	if maxWorkers <= 0 {
		maxWorkers = 25
	}
	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger: logger,
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 5},
			QueueAuction:       {MaxWorkers: maxWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		m.RecordOperationFailure(ctx, "initialize_service", component)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	m.RecordOperationSuccess(ctx, "initialize_service", component)
	m.RecordOperationDuration(ctx, "initialize_service", component, time.Since(start))

	ctxLogger.Info("Auction queue service initialized successfully")
	return &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		db:      bunDB,
		metrics: m,
	}, nil
}

// Start starts the River queue service
func (s *Service) Start(ctx context.Context) error {
	return s.track(ctx, "start_service", func() error {
		if err := s.client.Start(ctx); err != nil {
			return fmt.Errorf("failed to start River client: %w", err)
		}
		s.logger.Info("Auction queue service started")
		return nil
	})
}

// Stop stops the River queue service and closes its pool.
func (s *Service) Stop(ctx context.Context) error {
	return s.track(ctx, "stop_service", func() error {
		defer s.pool.Close()
		if err := s.client.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop River client: %w", err)
		}
		s.logger.Info("Auction queue service stopped")
		return nil
	})
}

// ScheduleActivation enqueues the activation job for a scheduled round. A
// second call for the same round is deduplicated by River.
func (s *Service) ScheduleActivation(ctx context.Context, roundID uuid.UUID, at time.Time) error {
	return s.track(ctx, "schedule_round_activation", func() error {
		return s.insert(ctx, RoundActivationJob{RoundID: roundID.String()}, at, true)
	})
}

// ScheduleCloseReminder enqueues the round_closeable notification at end time.
func (s *Service) ScheduleCloseReminder(ctx context.Context, roundID uuid.UUID, at time.Time) error {
	return s.track(ctx, "schedule_round_closing", func() error {
		return s.insert(ctx, RoundClosingJob{RoundID: roundID.String(), EndTime: at}, at, true)
	})
}

// EnqueueRosterSync enqueues immediate delivery of settled assignments.
func (s *Service) EnqueueRosterSync(ctx context.Context, roundID uuid.UUID, assignments []auctiondomain.RosterAssignment) error {
	return s.track(ctx, "enqueue_roster_sync", func() error {
		return s.insert(ctx, RosterSyncJob{RoundID: roundID.String(), Assignments: assignments}, time.Time{}, false)
	})
}

func (s *Service) insert(ctx context.Context, args river.JobArgs, at time.Time, unique bool) error {
	opts := &river.InsertOpts{Queue: QueueAuction}
	if !at.IsZero() {
		opts.ScheduledAt = at
	}
	if unique {
		opts.UniqueOpts = river.UniqueOpts{ByArgs: true}
	}

	res, err := s.client.Insert(ctx, args, opts)
	if err != nil {
		return fmt.Errorf("failed to insert %s job: %w", args.Kind(), err)
	}

	s.logger.InfoContext(ctx, "Job scheduled",
		attr.ExtractCorrelationID(ctx),
		attr.String("job_kind", args.Kind()),
		attr.Int64("job_id", res.Job.ID),
		attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
		attr.Time("scheduled_at", res.Job.ScheduledAt),
	)
	return nil
}

type riverJobRow struct {
	ID          int64          `bun:"id"`
	Kind        string         `bun:"kind"`
	State       string         `bun:"state"`
	Args        map[string]any `bun:"args,type:jsonb"`
	ScheduledAt *time.Time     `bun:"scheduled_at"`
	CreatedAt   time.Time      `bun:"created_at"`
	Attempt     int16          `bun:"attempt"`
	MaxAttempts int16          `bun:"max_attempts"`
}

var roundJobKinds = []string{
	RoundActivationJob{}.Kind(),
	RoundClosingJob{}.Kind(),
}

// CancelRoundJobs cancels pending activation and closing jobs for a round.
// Roster sync jobs are never cancelled.
func (s *Service) CancelRoundJobs(ctx context.Context, roundID uuid.UUID) error {
	return s.track(ctx, "cancel_round_jobs", func() error {
		var jobs []riverJobRow
		err := s.db.NewSelect().
			Table("river_job").
			Column("id", "kind", "state").
			Where("kind IN (?)", bun.In(roundJobKinds)).
			Where("state IN (?)", bun.In([]string{"available", "scheduled", "retryable"})).
			Where("args->>'round_id' = ?", roundID.String()).
			Scan(ctx, &jobs)
		if err != nil {
			return fmt.Errorf("failed to query jobs for cancellation: %w", err)
		}

		var errs []error
		for _, job := range jobs {
			if _, err := s.client.JobCancel(ctx, job.ID); err != nil {
				s.logger.WarnContext(ctx, "Failed to cancel job",
					attr.Int64("job_id", job.ID),
					attr.String("job_kind", job.Kind),
					attr.Error(err),
				)
				errs = append(errs, err)
			}
		}

		s.logger.InfoContext(ctx, "Round jobs cancelled",
			attr.RoundID("round_id", roundID),
			attr.Int("total_found", len(jobs)),
			attr.Int("failed", len(errs)),
		)
		return errors.Join(errs...)
	})
}

// GetScheduledJobs lists the river jobs of a round in schedule order.
func (s *Service) GetScheduledJobs(ctx context.Context, roundID uuid.UUID) ([]auctionservice.ScheduledJob, error) {
	var result []auctionservice.ScheduledJob
	err := s.track(ctx, "get_scheduled_jobs", func() error {
		var jobs []riverJobRow
		err := s.db.NewSelect().
			Table("river_job").
			Column("id", "kind", "state", "args", "scheduled_at", "created_at", "attempt", "max_attempts").
			Where("kind IN (?)", bun.In(roundJobKinds)).
			Where("args->>'round_id' = ?", roundID.String()).
			Order("scheduled_at ASC NULLS LAST", "created_at ASC").
			Scan(ctx, &jobs)
		if err != nil {
			return fmt.Errorf("failed to query scheduled jobs: %w", err)
		}

		result = make([]auctionservice.ScheduledJob, len(jobs))
		for i, job := range jobs {
			result[i] = auctionservice.ScheduledJob{
				ID:          job.ID,
				Kind:        job.Kind,
				RoundID:     roundID.String(),
				State:       job.State,
				ScheduledAt: job.ScheduledAt,
				CreatedAt:   job.CreatedAt,
				Attempt:     int(job.Attempt),
				MaxAttempts: int(job.MaxAttempts),
			}
		}
		return nil
	})
	return result, err
}

// HealthCheck verifies the queue service is healthy
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.track(ctx, "health_check", func() error {
		if s.client == nil {
			return errors.New("river client is nil")
		}
		if err := s.pool.Ping(ctx); err != nil {
			return fmt.Errorf("queue service health check failed: %w", err)
		}
		return nil
	})
}

func (s *Service) track(ctx context.Context, operation string, fn func() error) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, operation, component)

	if err := fn(); err != nil {
		s.logger.ErrorContext(ctx, "Queue operation failed",
			attr.String("operation", operation),
			attr.Error(err),
		)
		s.metrics.RecordOperationFailure(ctx, operation, component)
		return err
	}

	s.metrics.RecordOperationSuccess(ctx, operation, component)
	s.metrics.RecordOperationDuration(ctx, operation, component, time.Since(start))
	return nil
}
