package auctionservice

import (
	"context"
	"sync"
	"testing"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	auctiondb "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceBid(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(h *harness, round *auctiondb.Round)
		req       func(round auctiondb.Round) PlaceBidRequest
		actor     string
		wantCode  Code
		wantCount int
	}{
		{
			name: "places bid and seeds budget",
			req: func(r auctiondb.Round) PlaceBidRequest {
				return PlaceBidRequest{RoundID: r.ID, PlayerID: "p1", TeamID: "X"}
			},
			wantCount: 1,
		},
		{
			name: "round not active",
			setup: func(h *harness, r *auctiondb.Round) {
				r.Status = auctiondomain.RoundStatusScheduled
			},
			req: func(r auctiondb.Round) PlaceBidRequest {
				return PlaceBidRequest{RoundID: r.ID, PlayerID: "p1", TeamID: "X"}
			},
			wantCode: CodeRoundNotActive,
		},
		{
			name: "unknown round",
			req: func(r auctiondb.Round) PlaceBidRequest {
				return PlaceBidRequest{RoundID: uuid.New(), PlayerID: "p1", TeamID: "X"}
			},
			wantCode: CodeRoundNotFound,
		},
		{
			name: "player not in round",
			req: func(r auctiondb.Round) PlaceBidRequest {
				return PlaceBidRequest{RoundID: r.ID, PlayerID: "p9", TeamID: "X"}
			},
			wantCode: CodePlayerNotInRound,
		},
		{
			name: "player sold in an earlier round",
			setup: func(h *harness, r *auctiondb.Round) {
				earlier := activeRound(10)
				earlier.Status = auctiondomain.RoundStatusCompleted
				h.repo.seedRound(earlier, auctiondb.RoundPlayer{PlayerID: "p1", PlayerName: "One", Status: auctiondomain.PlayerStatusSold, WinningTeamID: ptr("Y"), WinningBid: ptr(int64(10))})
			},
			req: func(r auctiondb.Round) PlaceBidRequest {
				return PlaceBidRequest{RoundID: r.ID, PlayerID: "p1", TeamID: "X"}
			},
			wantCode: CodePlayerAlreadySold,
		},
		{
			name: "roster full",
			setup: func(h *harness, r *auctiondb.Round) {
				h.repo.seedBudget(teamBudget("X", 100, 4, 5))
				h.repo.seedBid(bid(r.ID, "p2", "X", 10))
			},
			req: func(r auctiondb.Round) PlaceBidRequest {
				return PlaceBidRequest{RoundID: r.ID, PlayerID: "p1", TeamID: "X"}
			},
			wantCode: CodeRosterFull,
		},
		{
			name: "amount other than base price",
			req: func(r auctiondb.Round) PlaceBidRequest {
				return PlaceBidRequest{RoundID: r.ID, PlayerID: "p1", TeamID: "X", Amount: 25}
			},
			wantCode: CodeInvalidAmount,
		},
		{
			name: "bidding for another team",
			req: func(r auctiondb.Round) PlaceBidRequest {
				return PlaceBidRequest{RoundID: r.ID, PlayerID: "p1", TeamID: "Y"}
			},
			wantCode: CodeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			round := activeRound(10)
			if tt.setup != nil {
				tt.setup(h, &round)
			}
			h.repo.seedRound(round, roundPlayers("p1", "p2")...)

			res, err := h.svc.PlaceBid(context.Background(), teamActor("X"), tt.req(round))
			if tt.wantCode != "" {
				requireCode(t, err, tt.wantCode)
				assert.Zero(t, h.bc.count(auctiondomain.EventBidAdded))
				return
			}
			require.NoError(t, err)
			assert.True(t, res.Created)
			assert.Equal(t, tt.wantCount, res.BidCount)
			assert.Equal(t, int64(10), res.Bid.Amount)
			assert.Equal(t, int64(100), h.repo.budget(key("X")).AvailableBudget)
			require.Len(t, h.bc.events, 1)
			assert.Equal(t, auctiondomain.EventBidAdded, h.bc.events[0].Kind)
			assert.Equal(t, 1, *h.bc.events[0].BidCount)
		})
	}
}

// A second hold would exceed the available budget.
func TestPlaceBid_InsufficientBudget(t *testing.T) {
	h := newHarness(t)
	round := activeRound(10)
	h.repo.seedRound(round, roundPlayers("p1", "p2")...)
	h.repo.seedBudget(teamBudget("X", 15, 0, 5))

	_, err := h.svc.PlaceBid(context.Background(), teamActor("X"), PlaceBidRequest{RoundID: round.ID, PlayerID: "p1", TeamID: "X"})
	require.NoError(t, err)

	_, err = h.svc.PlaceBid(context.Background(), teamActor("X"), PlaceBidRequest{RoundID: round.ID, PlayerID: "p2", TeamID: "X"})
	requireCode(t, err, CodeInsufficientBudget)
	assert.Equal(t, 1, h.repo.bidCount())
	assert.Equal(t, 1, h.bc.count(auctiondomain.EventBidAdded))
}

func TestPlaceBid_Idempotent(t *testing.T) {
	h := newHarness(t)
	round := activeRound(10)
	h.repo.seedRound(round, roundPlayers("p1")...)
	req := PlaceBidRequest{RoundID: round.ID, PlayerID: "p1", TeamID: "X"}

	first, err := h.svc.PlaceBid(context.Background(), teamActor("X"), req)
	require.NoError(t, err)
	second, err := h.svc.PlaceBid(context.Background(), teamActor("X"), req)
	require.NoError(t, err)

	assert.True(t, first.Created)
	assert.False(t, second.Created)
	assert.Equal(t, 1, second.BidCount)
	assert.Equal(t, 1, h.repo.bidCount())
	assert.Equal(t, 1, h.bc.count(auctiondomain.EventBidAdded))
}

// Racing placements by one team for one player leave one row and one event.
func TestPlaceBid_ConcurrentSameTeam(t *testing.T) {
	h := newHarness(t)
	round := activeRound(10)
	h.repo.seedRound(round, roundPlayers("p1")...)
	req := PlaceBidRequest{RoundID: round.ID, PlayerID: "p1", TeamID: "X"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.PlaceBid(context.Background(), teamActor("X"), req)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, h.repo.bidCount())
	assert.Equal(t, 1, h.bc.count(auctiondomain.EventBidAdded))
	for _, k := range h.repo.locks {
		assert.Equal(t, "bid:"+round.ID.String()+":X", k)
	}
}

func TestPlaceBid_Tiebreaker(t *testing.T) {
	setup := func(t *testing.T) (*harness, auctiondb.Round) {
		h := newHarness(t)
		parent := activeRound(10)
		parent.Status = auctiondomain.RoundStatusCompleted
		tb := activeRound(10)
		tb.Kind = auctiondomain.RoundKindTiebreaker
		tb.ParentRoundID = ptr(parent.ID)
		tb.TiebreakerPlayerID = ptr("p2")
		h.repo.seedRound(parent, auctiondb.RoundPlayer{PlayerID: "p2", PlayerName: "Two", Status: auctiondomain.PlayerStatusContested})
		h.repo.seedRound(tb, roundPlayers("p2")...)
		h.repo.seedEligible(tb.ID, "X", "Y")
		return h, tb
	}

	t.Run("eligible team bids sealed amount and replaces it", func(t *testing.T) {
		h, tb := setup(t)
		res, err := h.svc.PlaceBid(context.Background(), teamActor("X"), PlaceBidRequest{RoundID: tb.ID, PlayerID: "p2", TeamID: "X", Amount: 25})
		require.NoError(t, err)
		assert.Equal(t, int64(25), res.Bid.Amount)

		res, err = h.svc.PlaceBid(context.Background(), teamActor("X"), PlaceBidRequest{RoundID: tb.ID, PlayerID: "p2", TeamID: "X", Amount: 40})
		require.NoError(t, err)
		assert.False(t, res.Created)
		assert.Equal(t, int64(40), res.Bid.Amount)
		assert.Equal(t, 1, h.repo.bidCount())
		assert.Equal(t, 1, h.bc.count(auctiondomain.EventBidAdded))
	})

	t.Run("ineligible team", func(t *testing.T) {
		h, tb := setup(t)
		_, err := h.svc.PlaceBid(context.Background(), teamActor("Z"), PlaceBidRequest{RoundID: tb.ID, PlayerID: "p2", TeamID: "Z", Amount: 25})
		requireCode(t, err, CodeTeamNotEligible)
	})

	t.Run("below base price", func(t *testing.T) {
		h, tb := setup(t)
		_, err := h.svc.PlaceBid(context.Background(), teamActor("X"), PlaceBidRequest{RoundID: tb.ID, PlayerID: "p2", TeamID: "X", Amount: 5})
		requireCode(t, err, CodeInvalidAmount)
	})

	t.Run("amount above available budget", func(t *testing.T) {
		h, tb := setup(t)
		_, err := h.svc.PlaceBid(context.Background(), teamActor("X"), PlaceBidRequest{RoundID: tb.ID, PlayerID: "p2", TeamID: "X", Amount: 101})
		requireCode(t, err, CodeInsufficientBudget)
	})
}

func TestPlaceBids(t *testing.T) {
	t.Run("places new bids and skips held players", func(t *testing.T) {
		h := newHarness(t)
		round := activeRound(10)
		h.repo.seedRound(round, roundPlayers("p1", "p2", "p3")...)
		h.repo.seedBid(bid(round.ID, "p1", "X", 10))

		res, err := h.svc.PlaceBids(context.Background(), teamActor("X"), PlaceBidsRequest{RoundID: round.ID, TeamID: "X", PlayerIDs: []string{"p1", "p2", "p3", "p2"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"p2", "p3"}, res.Placed)
		assert.Equal(t, []string{"p1"}, res.Skipped)
		assert.Equal(t, 3, h.repo.bidCount())
		assert.Equal(t, 2, h.bc.count(auctiondomain.EventBidAdded))
	})

	t.Run("all or nothing on budget", func(t *testing.T) {
		h := newHarness(t)
		round := activeRound(10)
		h.repo.seedRound(round, roundPlayers("p1", "p2", "p3")...)
		h.repo.seedBudget(teamBudget("X", 25, 0, 5))

		_, err := h.svc.PlaceBids(context.Background(), teamActor("X"), PlaceBidsRequest{RoundID: round.ID, TeamID: "X", PlayerIDs: []string{"p1", "p2", "p3"}})
		requireCode(t, err, CodeInsufficientBudget)
		assert.Zero(t, h.repo.bidCount())
		assert.Empty(t, h.bc.kinds())
	})

	t.Run("all or nothing on slots", func(t *testing.T) {
		h := newHarness(t)
		round := activeRound(10)
		h.repo.seedRound(round, roundPlayers("p1", "p2", "p3")...)
		h.repo.seedBudget(teamBudget("X", 100, 3, 5))

		_, err := h.svc.PlaceBids(context.Background(), teamActor("X"), PlaceBidsRequest{RoundID: round.ID, TeamID: "X", PlayerIDs: []string{"p1", "p2", "p3"}})
		requireCode(t, err, CodeRosterFull)
		assert.Zero(t, h.repo.bidCount())
	})

	t.Run("unknown player rejects the batch", func(t *testing.T) {
		h := newHarness(t)
		round := activeRound(10)
		h.repo.seedRound(round, roundPlayers("p1")...)

		_, err := h.svc.PlaceBids(context.Background(), teamActor("X"), PlaceBidsRequest{RoundID: round.ID, TeamID: "X", PlayerIDs: []string{"p1", "p9"}})
		requireCode(t, err, CodePlayerNotInRound)
		assert.Zero(t, h.repo.bidCount())
	})
}

func TestWithdrawBid(t *testing.T) {
	t.Run("removes bid and emits new count", func(t *testing.T) {
		h := newHarness(t)
		round := activeRound(10)
		h.repo.seedRound(round, roundPlayers("p1")...)
		h.repo.seedBid(bid(round.ID, "p1", "X", 10))
		h.repo.seedBid(bid(round.ID, "p1", "Y", 10))

		res, err := h.svc.WithdrawBid(context.Background(), teamActor("X"), round.ID, "p1", "X")
		require.NoError(t, err)
		assert.True(t, res.Removed)
		assert.Equal(t, 1, res.BidCount)
		require.Len(t, h.bc.events, 1)
		assert.Equal(t, auctiondomain.EventBidRemoved, h.bc.events[0].Kind)
		assert.Equal(t, 1, *h.bc.events[0].BidCount)
	})

	t.Run("absent bid is a no-op", func(t *testing.T) {
		h := newHarness(t)
		round := activeRound(10)
		h.repo.seedRound(round, roundPlayers("p1")...)

		res, err := h.svc.WithdrawBid(context.Background(), teamActor("X"), round.ID, "p1", "X")
		require.NoError(t, err)
		assert.False(t, res.Removed)
		assert.Empty(t, h.bc.kinds())
	})

	t.Run("round completed", func(t *testing.T) {
		h := newHarness(t)
		round := activeRound(10)
		round.Status = auctiondomain.RoundStatusCompleted
		h.repo.seedRound(round, roundPlayers("p1")...)
		h.repo.seedBid(bid(round.ID, "p1", "X", 10))

		_, err := h.svc.WithdrawBid(context.Background(), teamActor("X"), round.ID, "p1", "X")
		requireCode(t, err, CodeRoundNotActive)
		assert.Equal(t, 1, h.repo.bidCount())
	})
}

func TestListTeamBids(t *testing.T) {
	h := newHarness(t)
	round := activeRound(10)
	h.repo.seedRound(round, roundPlayers("p1", "p2")...)
	h.repo.seedBid(bid(round.ID, "p1", "X", 10))
	h.repo.seedBid(bid(round.ID, "p2", "Y", 10))

	bids, err := h.svc.ListTeamBids(context.Background(), teamActor("X"), round.ID, "X")
	require.NoError(t, err)
	require.Len(t, bids, 1)
	assert.Equal(t, "p1", bids[0].PlayerID)
	assert.Equal(t, "Player p1", bids[0].PlayerName)
	assert.Equal(t, auctiondomain.PlayerStatusPending, bids[0].PlayerStatus)

	_, err = h.svc.ListTeamBids(context.Background(), teamActor("X"), round.ID, "Y")
	requireCode(t, err, CodeForbidden)

	all, err := h.svc.ListTeamBids(context.Background(), committee, round.ID, "Y")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
