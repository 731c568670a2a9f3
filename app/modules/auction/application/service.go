package auctionservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	auctiondb "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/repositories"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/metrics"
	"github.com/Black-And-White-Club/bulk-auction/internal/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "AuctionService"

// Config holds service-level defaults.
type Config struct {
	DefaultTrack   string
	SettlementMode auctiondomain.SettlementMode
}

// Ports bundles the external collaborators.
type Ports struct {
	Authorizer  Authorizer
	Seasons     SeasonDirectory
	Broadcaster Broadcaster
	Notifier    Notifier
	Jobs        JobScheduler
	Clock       Clock
}

// AuctionService implements the Service interface.
type AuctionService struct {
	repo        auctiondb.Repository
	logger      *slog.Logger
	metrics     metrics.AuctionMetrics
	tracer      trace.Tracer
	db          *bun.DB
	auth        Authorizer
	seasons     SeasonDirectory
	broadcaster Broadcaster
	notifier    Notifier
	jobs        JobScheduler
	clock       Clock
	config      Config
}

// NewAuctionService creates a new AuctionService.
func NewAuctionService(
	repo auctiondb.Repository,
	logger *slog.Logger,
	m metrics.AuctionMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	ports Ports,
	cfg Config,
) *AuctionService {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	if ports.Clock == nil {
		ports.Clock = realClock{}
	}
	if cfg.SettlementMode == "" {
		cfg.SettlementMode = auctiondomain.SettlementIncremental
	}
	return &AuctionService{
		repo:        repo,
		logger:      logger,
		metrics:     m,
		tracer:      tracer,
		db:          db,
		auth:        ports.Authorizer,
		seasons:     ports.Seasons,
		broadcaster: ports.Broadcaster,
		notifier:    ports.Notifier,
		jobs:        ports.Jobs,
		clock:       ports.Clock,
		config:      cfg,
	}
}

func (s *AuctionService) now() time.Time {
	return s.clock.Now().UTC()
}

// -----------------------------------------------------------------------------
// Post-commit effects
// -----------------------------------------------------------------------------

type notification struct {
	kind    string
	payload any
}

// effects collects side effects produced inside a transaction. They are
// flushed only after the transaction commits and are discarded on rollback.
type effects struct {
	events        []auctiondomain.Event
	notifications []notification
	jobs          []func(ctx context.Context) error
}

func (fx *effects) emit(ev auctiondomain.Event) {
	fx.events = append(fx.events, ev)
}

func (fx *effects) notify(kind string, payload any) {
	fx.notifications = append(fx.notifications, notification{kind: kind, payload: payload})
}

func (fx *effects) enqueue(job func(ctx context.Context) error) {
	fx.jobs = append(fx.jobs, job)
}

// flush delivers collected effects. Every effect is best-effort: failures are
// logged and never undo the committed state.
func (s *AuctionService) flush(ctx context.Context, fx *effects) {
	for _, ev := range fx.events {
		if s.broadcaster == nil {
			break
		}
		if err := s.broadcaster.Broadcast(ctx, ev); err != nil {
			s.logger.WarnContext(ctx, "Failed to broadcast round event",
				attr.ExtractCorrelationID(ctx),
				attr.String("kind", string(ev.Kind)),
				attr.String("round_id", ev.RoundID),
				attr.Error(err),
			)
		}
	}
	for _, n := range fx.notifications {
		if s.notifier == nil {
			break
		}
		if err := s.notifier.Notify(ctx, n.kind, n.payload); err != nil {
			s.logger.WarnContext(ctx, "Failed to send notification",
				attr.ExtractCorrelationID(ctx),
				attr.String("kind", n.kind),
				attr.Error(err),
			)
		}
	}
	for _, job := range fx.jobs {
		if err := job(ctx); err != nil {
			s.logger.WarnContext(ctx, "Failed to enqueue job",
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
		}
	}
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *AuctionService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {

	// Start span
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	// Handle Infrastructure Error
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	// Handle Domain Failure
	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		return result, nil
	}

	s.logger.InfoContext(ctx, "Operation completed successfully",
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", operationName),
		attr.String("identifier", identifier),
	)
	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *AuctionService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {

	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		if txErr == nil && result.IsFailure() {
			return errRollback
		}
		return txErr
	})
	if errors.Is(err, errRollback) {
		err = nil
	}

	return result, err
}

// errRollback aborts a transaction whose operation returned a failure result,
// so rejected requests leave no partial writes behind.
var errRollback = errors.New("rollback on failure result")

// savepoint runs fn in a nested transaction. A failure rolls back only fn's
// writes and leaves the enclosing transaction usable.
func savepoint(ctx context.Context, db bun.IDB, fn func(ctx context.Context, db bun.IDB) error) error {
	if db == nil {
		return fn(ctx, nil)
	}
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

// execute runs op inside telemetry and a transaction, then flushes effects if
// it succeeded.
func execute[S any](
	s *AuctionService,
	ctx context.Context,
	operationName string,
	identifier string,
	op func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[S, error], error),
) (S, error) {
	var zero S
	fx := &effects{}

	result, err := withTelemetry(s, ctx, operationName, identifier, func(ctx context.Context) (results.OperationResult[S, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[S, error], error) {
			fx = &effects{}
			return op(ctx, db, fx)
		})
	})
	if err != nil {
		if auctiondb.IsConcurrencyConflict(err) {
			return zero, &AuctionError{Code: CodeConcurrencyConflict, Message: ErrConcurrencyConflict.Message, Err: err}
		}
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}

	s.flush(ctx, fx)
	return *result.Success, nil
}

func fail[S any](err error) (results.OperationResult[S, error], error) {
	return results.FailureResult[S, error](err), nil
}

func ok[S any](v S) (results.OperationResult[S, error], error) {
	return results.SuccessResult[S, error](v), nil
}

func infra[S any](err error) (results.OperationResult[S, error], error) {
	return results.OperationResult[S, error]{}, err
}
