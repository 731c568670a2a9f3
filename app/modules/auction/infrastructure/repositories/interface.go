package auctiondb

import (
	"context"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for auction persistence. Every method takes
// the bun.IDB to run on so service transactions span several calls; nil uses
// the repository's default connection.
type Repository interface {
	// Rounds
	CreateRound(ctx context.Context, db bun.IDB, round *Round) error
	GetRound(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*Round, error)
	GetRoundForShare(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*Round, error)
	GetRoundForUpdate(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*Round, error)
	ListRounds(ctx context.Context, db bun.IDB, seasonID string, status auctiondomain.RoundStatus) ([]Round, error)
	UpdateRound(ctx context.Context, db bun.IDB, round *Round) error
	CreateTiebreakerRound(ctx context.Context, db bun.IDB, round *Round, teamIDs []string) (*Round, bool, error)
	ListEligibleTeams(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]string, error)

	// Round players
	UpsertRoundPlayers(ctx context.Context, db bun.IDB, players []RoundPlayer) error
	ListRoundPlayers(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]RoundPlayer, error)
	GetRoundPlayer(ctx context.Context, db bun.IDB, roundID uuid.UUID, playerID string) (*RoundPlayer, error)
	UpdateRoundPlayer(ctx context.Context, db bun.IDB, player *RoundPlayer) error
	IsPlayerSold(ctx context.Context, db bun.IDB, seasonID, track, playerID string) (bool, error)
	CountOwnedPlayers(ctx context.Context, db bun.IDB, seasonID, track, teamID string) (int, error)

	// Bids
	InsertBid(ctx context.Context, db bun.IDB, bid *Bid) (bool, error)
	UpdateBidAmount(ctx context.Context, db bun.IDB, bid *Bid) error
	GetBid(ctx context.Context, db bun.IDB, roundID uuid.UUID, playerID, teamID string) (*Bid, error)
	DeleteBid(ctx context.Context, db bun.IDB, roundID uuid.UUID, playerID, teamID string) (bool, error)
	CountPlayerBids(ctx context.Context, db bun.IDB, roundID uuid.UUID, playerID string) (int, error)
	CountBidsByPlayer(ctx context.Context, db bun.IDB, roundID uuid.UUID) (map[string]int, error)
	TeamHoldings(ctx context.Context, db bun.IDB, roundID uuid.UUID, teamID string) (int, int64, error)
	ListBids(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]Bid, error)
	ListTeamBids(ctx context.Context, db bun.IDB, roundID uuid.UUID, teamID string) ([]Bid, error)

	// Budgets
	EnsureBudget(ctx context.Context, db bun.IDB, budget *TeamBudget) error
	GetBudget(ctx context.Context, db bun.IDB, key auctiondomain.BudgetKey) (*TeamBudget, error)
	LockBudgets(ctx context.Context, db bun.IDB, seasonID, track string, teamIDs []string) ([]TeamBudget, error)
	UpdateBudget(ctx context.Context, db bun.IDB, budget *TeamBudget) error

	// Ledger
	AppendLedgerEntries(ctx context.Context, db bun.IDB, entries []LedgerEntry) error
	ListLedgerEntries(ctx context.Context, db bun.IDB, key auctiondomain.BudgetKey, limit int) ([]LedgerEntry, error)
	SumLedger(ctx context.Context, db bun.IDB, key auctiondomain.BudgetKey) (int64, error)
	LatestLedgerEntry(ctx context.Context, db bun.IDB, key auctiondomain.BudgetKey) (*LedgerEntry, error)

	// Settlement outcomes
	GetSettlement(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*Settlement, error)
	UpsertSettlement(ctx context.Context, db bun.IDB, settlement *Settlement) error

	// Locks
	AcquireXactLock(ctx context.Context, db bun.IDB, key string) error
}
