package auctionhandlers

import (
	"context"
	"net/http"
	"sync"

	auctionservice "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/application"
	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	auctiondb "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/repositories"
	authdomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/domain"
	"github.com/google/uuid"
)

// FakeService is a programmable auctionservice.Service that records calls.
type FakeService struct {
	mu    sync.Mutex
	trace []string

	CreateRoundFunc            func(ctx context.Context, actor authdomain.Actor, req auctionservice.CreateRoundRequest) (*auctionservice.RoundView, error)
	AddRoundPlayersFunc        func(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, players []auctionservice.PlayerInput) (*auctionservice.RoundView, error)
	GetRoundFunc               func(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID) (*auctionservice.RoundView, error)
	ListRoundsFunc             func(ctx context.Context, actor authdomain.Actor, seasonID string, status auctiondomain.RoundStatus) ([]auctiondb.Round, error)
	ScheduleRoundFunc          func(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, req auctionservice.ScheduleRequest) (*auctiondb.Round, error)
	ActivateRoundFunc          func(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID) (*auctiondb.Round, error)
	ActivateScheduledRoundFunc func(ctx context.Context, roundID uuid.UUID) (*auctiondb.Round, error)
	CancelRoundFunc            func(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID) (*auctiondb.Round, error)
	PlaceBidFunc               func(ctx context.Context, actor authdomain.Actor, req auctionservice.PlaceBidRequest) (*auctionservice.BidResult, error)
	PlaceBidsFunc              func(ctx context.Context, actor authdomain.Actor, req auctionservice.PlaceBidsRequest) (*auctionservice.BulkBidResult, error)
	WithdrawBidFunc            func(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, playerID, teamID string) (*auctionservice.WithdrawResult, error)
	ListTeamBidsFunc           func(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, teamID string) ([]auctionservice.TeamBidView, error)
	CompleteRoundFunc          func(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, req auctionservice.CompleteRequest) (*auctionservice.CompletionResult, error)
	ListRoundJobsFunc          func(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID) ([]auctionservice.ScheduledJob, error)
	PreviewCompletionFunc      func(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, mode auctiondomain.SettlementMode) (*auctionservice.CompletionResult, error)
	CreateTiebreakerFunc       func(ctx context.Context, actor authdomain.Actor, req auctionservice.CreateTiebreakerRequest) (*auctionservice.TiebreakerRef, error)
	GetTeamBudgetFunc          func(ctx context.Context, actor authdomain.Actor, key auctiondomain.BudgetKey) (*auctionservice.BudgetView, error)
	ListLedgerFunc             func(ctx context.Context, actor authdomain.Actor, key auctiondomain.BudgetKey, limit int) ([]auctiondb.LedgerEntry, error)
	AdjustBudgetFunc           func(ctx context.Context, actor authdomain.Actor, req auctionservice.AdjustBudgetRequest) (*auctionservice.BudgetView, error)
	AuditTeamBudgetFunc        func(ctx context.Context, actor authdomain.Actor, key auctiondomain.BudgetKey) (*auctiondomain.AuditReport, error)
}

var _ auctionservice.Service = (*FakeService)(nil)

func (f *FakeService) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// Trace returns the recorded calls in order.
func (f *FakeService) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeService) CreateRound(ctx context.Context, actor authdomain.Actor, req auctionservice.CreateRoundRequest) (*auctionservice.RoundView, error) {
	f.record("CreateRound")
	if f.CreateRoundFunc != nil {
		return f.CreateRoundFunc(ctx, actor, req)
	}
	return &auctionservice.RoundView{}, nil
}

func (f *FakeService) AddRoundPlayers(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, players []auctionservice.PlayerInput) (*auctionservice.RoundView, error) {
	f.record("AddRoundPlayers")
	if f.AddRoundPlayersFunc != nil {
		return f.AddRoundPlayersFunc(ctx, actor, roundID, players)
	}
	return &auctionservice.RoundView{}, nil
}

func (f *FakeService) GetRound(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID) (*auctionservice.RoundView, error) {
	f.record("GetRound")
	if f.GetRoundFunc != nil {
		return f.GetRoundFunc(ctx, actor, roundID)
	}
	return &auctionservice.RoundView{}, nil
}

func (f *FakeService) ListRounds(ctx context.Context, actor authdomain.Actor, seasonID string, status auctiondomain.RoundStatus) ([]auctiondb.Round, error) {
	f.record("ListRounds")
	if f.ListRoundsFunc != nil {
		return f.ListRoundsFunc(ctx, actor, seasonID, status)
	}
	return nil, nil
}

func (f *FakeService) ScheduleRound(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, req auctionservice.ScheduleRequest) (*auctiondb.Round, error) {
	f.record("ScheduleRound")
	if f.ScheduleRoundFunc != nil {
		return f.ScheduleRoundFunc(ctx, actor, roundID, req)
	}
	return &auctiondb.Round{ID: roundID}, nil
}

func (f *FakeService) ActivateRound(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID) (*auctiondb.Round, error) {
	f.record("ActivateRound")
	if f.ActivateRoundFunc != nil {
		return f.ActivateRoundFunc(ctx, actor, roundID)
	}
	return &auctiondb.Round{ID: roundID}, nil
}

func (f *FakeService) ActivateScheduledRound(ctx context.Context, roundID uuid.UUID) (*auctiondb.Round, error) {
	f.record("ActivateScheduledRound")
	if f.ActivateScheduledRoundFunc != nil {
		return f.ActivateScheduledRoundFunc(ctx, roundID)
	}
	return &auctiondb.Round{ID: roundID}, nil
}

func (f *FakeService) CancelRound(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID) (*auctiondb.Round, error) {
	f.record("CancelRound")
	if f.CancelRoundFunc != nil {
		return f.CancelRoundFunc(ctx, actor, roundID)
	}
	return &auctiondb.Round{ID: roundID}, nil
}

func (f *FakeService) PlaceBid(ctx context.Context, actor authdomain.Actor, req auctionservice.PlaceBidRequest) (*auctionservice.BidResult, error) {
	f.record("PlaceBid")
	if f.PlaceBidFunc != nil {
		return f.PlaceBidFunc(ctx, actor, req)
	}
	return &auctionservice.BidResult{}, nil
}

func (f *FakeService) PlaceBids(ctx context.Context, actor authdomain.Actor, req auctionservice.PlaceBidsRequest) (*auctionservice.BulkBidResult, error) {
	f.record("PlaceBids")
	if f.PlaceBidsFunc != nil {
		return f.PlaceBidsFunc(ctx, actor, req)
	}
	return &auctionservice.BulkBidResult{}, nil
}

func (f *FakeService) WithdrawBid(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, playerID, teamID string) (*auctionservice.WithdrawResult, error) {
	f.record("WithdrawBid")
	if f.WithdrawBidFunc != nil {
		return f.WithdrawBidFunc(ctx, actor, roundID, playerID, teamID)
	}
	return &auctionservice.WithdrawResult{}, nil
}

func (f *FakeService) ListTeamBids(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, teamID string) ([]auctionservice.TeamBidView, error) {
	f.record("ListTeamBids")
	if f.ListTeamBidsFunc != nil {
		return f.ListTeamBidsFunc(ctx, actor, roundID, teamID)
	}
	return nil, nil
}

func (f *FakeService) CompleteRound(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, req auctionservice.CompleteRequest) (*auctionservice.CompletionResult, error) {
	f.record("CompleteRound")
	if f.CompleteRoundFunc != nil {
		return f.CompleteRoundFunc(ctx, actor, roundID, req)
	}
	return &auctionservice.CompletionResult{}, nil
}

func (f *FakeService) PreviewCompletion(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, mode auctiondomain.SettlementMode) (*auctionservice.CompletionResult, error) {
	f.record("PreviewCompletion")
	if f.PreviewCompletionFunc != nil {
		return f.PreviewCompletionFunc(ctx, actor, roundID, mode)
	}
	return &auctionservice.CompletionResult{}, nil
}

func (f *FakeService) ListRoundJobs(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID) ([]auctionservice.ScheduledJob, error) {
	f.record("ListRoundJobs")
	if f.ListRoundJobsFunc != nil {
		return f.ListRoundJobsFunc(ctx, actor, roundID)
	}
	return []auctionservice.ScheduledJob{}, nil
}

func (f *FakeService) CreateTiebreaker(ctx context.Context, actor authdomain.Actor, req auctionservice.CreateTiebreakerRequest) (*auctionservice.TiebreakerRef, error) {
	f.record("CreateTiebreaker")
	if f.CreateTiebreakerFunc != nil {
		return f.CreateTiebreakerFunc(ctx, actor, req)
	}
	return &auctionservice.TiebreakerRef{}, nil
}

func (f *FakeService) GetTeamBudget(ctx context.Context, actor authdomain.Actor, key auctiondomain.BudgetKey) (*auctionservice.BudgetView, error) {
	f.record("GetTeamBudget")
	if f.GetTeamBudgetFunc != nil {
		return f.GetTeamBudgetFunc(ctx, actor, key)
	}
	return &auctionservice.BudgetView{}, nil
}

func (f *FakeService) ListLedger(ctx context.Context, actor authdomain.Actor, key auctiondomain.BudgetKey, limit int) ([]auctiondb.LedgerEntry, error) {
	f.record("ListLedger")
	if f.ListLedgerFunc != nil {
		return f.ListLedgerFunc(ctx, actor, key, limit)
	}
	return nil, nil
}

func (f *FakeService) AdjustBudget(ctx context.Context, actor authdomain.Actor, req auctionservice.AdjustBudgetRequest) (*auctionservice.BudgetView, error) {
	f.record("AdjustBudget")
	if f.AdjustBudgetFunc != nil {
		return f.AdjustBudgetFunc(ctx, actor, req)
	}
	return &auctionservice.BudgetView{}, nil
}

func (f *FakeService) AuditTeamBudget(ctx context.Context, actor authdomain.Actor, key auctiondomain.BudgetKey) (*auctiondomain.AuditReport, error) {
	f.record("AuditTeamBudget")
	if f.AuditTeamBudgetFunc != nil {
		return f.AuditTeamBudgetFunc(ctx, actor, key)
	}
	return &auctiondomain.AuditReport{}, nil
}

// fakeStreamer records websocket subscriptions without upgrading.
type fakeStreamer struct {
	rounds []string
}

func (s *fakeStreamer) Serve(w http.ResponseWriter, _ *http.Request, roundID string) {
	s.rounds = append(s.rounds, roundID)
	w.WriteHeader(http.StatusAccepted)
}
