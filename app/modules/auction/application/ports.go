package auctionservice

import (
	"context"
	"time"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	authdomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/domain"
	"github.com/google/uuid"
)

// Authorizer decides whether an actor may perform an action.
type Authorizer interface {
	Authorize(ctx context.Context, actor authdomain.Actor, required authdomain.Role) error
	AuthorizeTeam(ctx context.Context, actor authdomain.Actor, teamID string) error
}

// BudgetDefaults seeds a team's budget row the first time it is touched.
type BudgetDefaults struct {
	StartingBalance int64
	RosterSlotsMax  int
}

// SeasonDirectory is the season/contract model's view of team budgets.
type SeasonDirectory interface {
	BudgetDefaults(ctx context.Context, key auctiondomain.BudgetKey) (BudgetDefaults, error)
}

// Broadcaster publishes advisory round events. Errors are logged, never
// returned to callers.
type Broadcaster interface {
	Broadcast(ctx context.Context, event auctiondomain.Event) error
}

// Notifier receives best-effort notifications after settlement.
type Notifier interface {
	Notify(ctx context.Context, kind string, payload any) error
}

// JobScheduler enqueues deferred work for rounds.
type JobScheduler interface {
	ScheduleActivation(ctx context.Context, roundID uuid.UUID, at time.Time) error
	ScheduleCloseReminder(ctx context.Context, roundID uuid.UUID, at time.Time) error
	EnqueueRosterSync(ctx context.Context, roundID uuid.UUID, assignments []auctiondomain.RosterAssignment) error
	CancelRoundJobs(ctx context.Context, roundID uuid.UUID) error
	GetScheduledJobs(ctx context.Context, roundID uuid.UUID) ([]ScheduledJob, error)
}

// ScheduledJob describes a queued job of a round.
type ScheduledJob struct {
	ID          int64      `json:"id"`
	Kind        string     `json:"kind"`
	RoundID     string     `json:"round_id"`
	State       string     `json:"state"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Attempt     int        `json:"attempt"`
	MaxAttempts int        `json:"max_attempts"`
}

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }
