package auctionservice

import (
	"context"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	auctiondb "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/repositories"
	authdomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/domain"
	"github.com/google/uuid"
)

// Service defines the contract for the bulk auction round engine. Rejections
// are returned as *AuctionError; any other error is an infrastructure failure
// after which no state changed.
type Service interface {
	// Rounds
	CreateRound(ctx context.Context, actor authdomain.Actor, req CreateRoundRequest) (*RoundView, error)
	AddRoundPlayers(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, players []PlayerInput) (*RoundView, error)
	GetRound(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID) (*RoundView, error)
	ListRounds(ctx context.Context, actor authdomain.Actor, seasonID string, status auctiondomain.RoundStatus) ([]auctiondb.Round, error)
	ScheduleRound(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, req ScheduleRequest) (*auctiondb.Round, error)
	ActivateRound(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID) (*auctiondb.Round, error)
	ActivateScheduledRound(ctx context.Context, roundID uuid.UUID) (*auctiondb.Round, error)
	CancelRound(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID) (*auctiondb.Round, error)
	ListRoundJobs(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID) ([]ScheduledJob, error)

	// Bids
	PlaceBid(ctx context.Context, actor authdomain.Actor, req PlaceBidRequest) (*BidResult, error)
	PlaceBids(ctx context.Context, actor authdomain.Actor, req PlaceBidsRequest) (*BulkBidResult, error)
	WithdrawBid(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, playerID, teamID string) (*WithdrawResult, error)
	ListTeamBids(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, teamID string) ([]TeamBidView, error)

	// Completion
	CompleteRound(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, req CompleteRequest) (*CompletionResult, error)
	PreviewCompletion(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, mode auctiondomain.SettlementMode) (*CompletionResult, error)
	CreateTiebreaker(ctx context.Context, actor authdomain.Actor, req CreateTiebreakerRequest) (*TiebreakerRef, error)

	// Budgets
	GetTeamBudget(ctx context.Context, actor authdomain.Actor, key auctiondomain.BudgetKey) (*BudgetView, error)
	ListLedger(ctx context.Context, actor authdomain.Actor, key auctiondomain.BudgetKey, limit int) ([]auctiondb.LedgerEntry, error)
	AdjustBudget(ctx context.Context, actor authdomain.Actor, req AdjustBudgetRequest) (*BudgetView, error)
	AuditTeamBudget(ctx context.Context, actor authdomain.Actor, key auctiondomain.BudgetKey) (*auctiondomain.AuditReport, error)
}

var _ Service = (*AuctionService)(nil)
