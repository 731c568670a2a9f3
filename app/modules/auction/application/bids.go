package auctionservice

import (
	"context"
	"errors"
	"fmt"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	auctiondb "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/repositories"
	authdomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/domain"
	"github.com/Black-And-White-Club/bulk-auction/internal/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func bidLockKey(roundID uuid.UUID, teamID string) string {
	return "bid:" + roundID.String() + ":" + teamID
}

// PlaceBid records a team's hold on a player. Repeating a bulk-round bid is a
// no-op. In a tiebreaker round a repeated bid replaces the sealed amount.
func (s *AuctionService) PlaceBid(ctx context.Context, actor authdomain.Actor, req PlaceBidRequest) (*BidResult, error) {
	return execute(s, ctx, "PlaceBid", req.RoundID.String(), func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[*BidResult, error], error) {
		if err := s.authorizeTeam(ctx, actor, req.TeamID); err != nil {
			return fail[*BidResult](err)
		}
		if req.PlayerID == "" || req.TeamID == "" {
			return fail[*BidResult](reject(ErrValidationFailed, "player_id and team_id are required"))
		}

		// Serializes slot and budget checks per (round, team).
		if err := s.repo.AcquireXactLock(ctx, db, bidLockKey(req.RoundID, req.TeamID)); err != nil {
			return infra[*BidResult](fmt.Errorf("failed to acquire bid lock: %w", err))
		}

		round, err := s.loadRound(ctx, db, req.RoundID, lockShare)
		if err != nil {
			return done[*BidResult](err)
		}
		if round.Status != auctiondomain.RoundStatusActive {
			return fail[*BidResult](reject(ErrRoundNotActive, "round %s is %s", round.ID, round.Status))
		}

		player, err := s.biddablePlayer(ctx, db, round, req.PlayerID)
		if err != nil {
			return done[*BidResult](err)
		}

		amount, err := s.bidAmount(ctx, db, round, req.TeamID, req.Amount)
		if err != nil {
			return done[*BidResult](err)
		}

		existing, err := s.repo.GetBid(ctx, db, round.ID, player.PlayerID, req.TeamID)
		if err != nil && !errors.Is(err, auctiondb.ErrNotFound) {
			return infra[*BidResult](fmt.Errorf("failed to read bid: %w", err))
		}
		if existing != nil && (!round.IsTiebreaker() || existing.Amount == amount) {
			count, err := s.repo.CountPlayerBids(ctx, db, round.ID, player.PlayerID)
			if err != nil {
				return infra[*BidResult](fmt.Errorf("failed to count bids: %w", err))
			}
			return ok(&BidResult{Bid: existing, BidCount: count})
		}

		var replaced int64
		if existing != nil {
			replaced = existing.Amount
		}
		if err := s.checkHoldings(ctx, db, round, req.TeamID, amount, replaced, existing != nil); err != nil {
			return done[*BidResult](err)
		}

		if existing != nil {
			existing.Amount = amount
			if err := s.repo.UpdateBidAmount(ctx, db, existing); err != nil {
				return infra[*BidResult](fmt.Errorf("failed to replace bid: %w", err))
			}
			count, err := s.repo.CountPlayerBids(ctx, db, round.ID, player.PlayerID)
			if err != nil {
				return infra[*BidResult](fmt.Errorf("failed to count bids: %w", err))
			}
			return ok(&BidResult{Bid: existing, BidCount: count})
		}

		bid := &auctiondb.Bid{
			RoundID:  round.ID,
			PlayerID: player.PlayerID,
			TeamID:   req.TeamID,
			Amount:   amount,
			PlacedAt: s.now(),
		}
		created, err := s.repo.InsertBid(ctx, db, bid)
		if err != nil {
			return infra[*BidResult](fmt.Errorf("failed to insert bid: %w", err))
		}
		count, err := s.repo.CountPlayerBids(ctx, db, round.ID, player.PlayerID)
		if err != nil {
			return infra[*BidResult](fmt.Errorf("failed to count bids: %w", err))
		}

		if created {
			fx.emit(auctiondomain.BidAdded(round.ID.String(), player.PlayerID, req.TeamID, count, s.now()))
			kind := string(round.Kind)
			fx.enqueue(func(ctx context.Context) error {
				s.metrics.RecordBidPlaced(ctx, kind)
				return nil
			})
		}
		return ok(&BidResult{Bid: bid, BidCount: count, Created: created})
	})
}

// PlaceBids places bulk-round bids on several players in one transaction.
// Either every new bid is accepted or none is. Players the team already holds
// are reported as skipped.
func (s *AuctionService) PlaceBids(ctx context.Context, actor authdomain.Actor, req PlaceBidsRequest) (*BulkBidResult, error) {
	return execute(s, ctx, "PlaceBids", req.RoundID.String(), func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[*BulkBidResult, error], error) {
		if err := s.authorizeTeam(ctx, actor, req.TeamID); err != nil {
			return fail[*BulkBidResult](err)
		}
		if req.TeamID == "" || len(req.PlayerIDs) == 0 {
			return fail[*BulkBidResult](reject(ErrValidationFailed, "team_id and player_ids are required"))
		}

		if err := s.repo.AcquireXactLock(ctx, db, bidLockKey(req.RoundID, req.TeamID)); err != nil {
			return infra[*BulkBidResult](fmt.Errorf("failed to acquire bid lock: %w", err))
		}

		round, err := s.loadRound(ctx, db, req.RoundID, lockShare)
		if err != nil {
			return done[*BulkBidResult](err)
		}
		if round.Status != auctiondomain.RoundStatusActive {
			return fail[*BulkBidResult](reject(ErrRoundNotActive, "round %s is %s", round.ID, round.Status))
		}
		if round.IsTiebreaker() {
			return fail[*BulkBidResult](reject(ErrValidationFailed, "tiebreaker bids are placed one at a time"))
		}

		out := &BulkBidResult{Placed: []string{}}
		var fresh []string
		seen := make(map[string]struct{}, len(req.PlayerIDs))
		for _, playerID := range req.PlayerIDs {
			if _, dup := seen[playerID]; dup {
				continue
			}
			seen[playerID] = struct{}{}

			if _, err := s.biddablePlayer(ctx, db, round, playerID); err != nil {
				return done[*BulkBidResult](err)
			}
			_, err := s.repo.GetBid(ctx, db, round.ID, playerID, req.TeamID)
			switch {
			case err == nil:
				out.Skipped = append(out.Skipped, playerID)
			case errors.Is(err, auctiondb.ErrNotFound):
				fresh = append(fresh, playerID)
			default:
				return infra[*BulkBidResult](fmt.Errorf("failed to read bid: %w", err))
			}
		}
		if len(fresh) == 0 {
			return ok(out)
		}

		budget, err := s.budgetFor(ctx, db, budgetKey(round, req.TeamID))
		if err != nil {
			return done[*BulkBidResult](err)
		}
		held, total, err := s.repo.TeamHoldings(ctx, db, round.ID, req.TeamID)
		if err != nil {
			return infra[*BulkBidResult](fmt.Errorf("failed to read team holdings: %w", err))
		}
		if held+len(fresh) > budget.State().SlotHeadroom() {
			return fail[*BulkBidResult](reject(ErrRosterFull, "team %s has %d open slots and would hold %d bids", req.TeamID, budget.State().SlotHeadroom(), held+len(fresh)))
		}
		need := total + int64(len(fresh))*round.BasePrice
		if need > budget.AvailableBudget {
			return fail[*BulkBidResult](reject(ErrInsufficientBudget, "team %s would hold %d against %d available", req.TeamID, need, budget.AvailableBudget))
		}

		now := s.now()
		for _, playerID := range fresh {
			created, err := s.repo.InsertBid(ctx, db, &auctiondb.Bid{
				RoundID:  round.ID,
				PlayerID: playerID,
				TeamID:   req.TeamID,
				Amount:   round.BasePrice,
				PlacedAt: now,
			})
			if err != nil {
				return infra[*BulkBidResult](fmt.Errorf("failed to insert bid: %w", err))
			}
			if !created {
				out.Skipped = append(out.Skipped, playerID)
				continue
			}
			count, err := s.repo.CountPlayerBids(ctx, db, round.ID, playerID)
			if err != nil {
				return infra[*BulkBidResult](fmt.Errorf("failed to count bids: %w", err))
			}
			out.Placed = append(out.Placed, playerID)
			fx.emit(auctiondomain.BidAdded(round.ID.String(), playerID, req.TeamID, count, now))
		}

		placed := len(out.Placed)
		fx.enqueue(func(ctx context.Context) error {
			for range placed {
				s.metrics.RecordBidPlaced(ctx, string(auctiondomain.RoundKindNormal))
			}
			return nil
		})
		return ok(out)
	})
}

// WithdrawBid removes a team's bid. Withdrawing a bid that does not exist
// is a no-op.
func (s *AuctionService) WithdrawBid(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, playerID, teamID string) (*WithdrawResult, error) {
	return execute(s, ctx, "WithdrawBid", roundID.String(), func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[*WithdrawResult, error], error) {
		if err := s.authorizeTeam(ctx, actor, teamID); err != nil {
			return fail[*WithdrawResult](err)
		}

		if err := s.repo.AcquireXactLock(ctx, db, bidLockKey(roundID, teamID)); err != nil {
			return infra[*WithdrawResult](fmt.Errorf("failed to acquire bid lock: %w", err))
		}

		round, err := s.loadRound(ctx, db, roundID, lockShare)
		if err != nil {
			return done[*WithdrawResult](err)
		}
		if round.Status != auctiondomain.RoundStatusActive {
			return fail[*WithdrawResult](reject(ErrRoundNotActive, "round %s is %s", round.ID, round.Status))
		}

		removed, err := s.repo.DeleteBid(ctx, db, round.ID, playerID, teamID)
		if err != nil {
			return infra[*WithdrawResult](fmt.Errorf("failed to delete bid: %w", err))
		}
		count, err := s.repo.CountPlayerBids(ctx, db, round.ID, playerID)
		if err != nil {
			return infra[*WithdrawResult](fmt.Errorf("failed to count bids: %w", err))
		}

		if removed {
			fx.emit(auctiondomain.BidRemoved(round.ID.String(), playerID, teamID, count, s.now()))
			fx.enqueue(func(ctx context.Context) error {
				s.metrics.RecordBidWithdrawn(ctx)
				return nil
			})
		}
		return ok(&WithdrawResult{Removed: removed, BidCount: count})
	})
}

// ListTeamBids returns a team's bids in a round.
func (s *AuctionService) ListTeamBids(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, teamID string) ([]TeamBidView, error) {
	return execute(s, ctx, "ListTeamBids", roundID.String(), func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[[]TeamBidView, error], error) {
		if err := s.authorizeTeamView(ctx, actor, teamID); err != nil {
			return fail[[]TeamBidView](err)
		}
		round, err := s.loadRound(ctx, db, roundID, lockNone)
		if err != nil {
			return done[[]TeamBidView](err)
		}

		bids, err := s.repo.ListTeamBids(ctx, db, round.ID, teamID)
		if err != nil {
			return infra[[]TeamBidView](err)
		}
		players, err := s.repo.ListRoundPlayers(ctx, db, round.ID)
		if err != nil {
			return infra[[]TeamBidView](err)
		}
		byID := make(map[string]auctiondb.RoundPlayer, len(players))
		for _, p := range players {
			byID[p.PlayerID] = p
		}

		out := make([]TeamBidView, 0, len(bids))
		for _, b := range bids {
			p := byID[b.PlayerID]
			out = append(out, TeamBidView{Bid: b, PlayerName: p.PlayerName, PlayerStatus: p.Status})
		}
		return ok(out)
	})
}

// biddablePlayer returns the round player if it can still receive bids.
func (s *AuctionService) biddablePlayer(ctx context.Context, db bun.IDB, round *auctiondb.Round, playerID string) (*auctiondb.RoundPlayer, error) {
	player, err := s.repo.GetRoundPlayer(ctx, db, round.ID, playerID)
	if errors.Is(err, auctiondb.ErrNotFound) {
		return nil, reject(ErrPlayerNotInRound, "player %s is not in round %s", playerID, round.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load round player: %w", err)
	}
	if player.Status != auctiondomain.PlayerStatusPending {
		if player.Status == auctiondomain.PlayerStatusSold {
			return nil, reject(ErrPlayerAlreadySold, "player %s is already sold", playerID)
		}
		return nil, reject(ErrValidationFailed, "player %s is %s", playerID, player.Status)
	}

	sold, err := s.repo.IsPlayerSold(ctx, db, round.SeasonID, round.CurrencyTrack, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check player ownership: %w", err)
	}
	if sold {
		return nil, reject(ErrPlayerAlreadySold, "player %s was sold in another round", playerID)
	}
	return player, nil
}

// bidAmount returns the amount a bid carries. Bulk rounds always bid the
// base price. Tiebreaker rounds accept sealed amounts at or above it from
// eligible teams only.
func (s *AuctionService) bidAmount(ctx context.Context, db bun.IDB, round *auctiondb.Round, teamID string, requested int64) (int64, error) {
	if !round.IsTiebreaker() {
		if requested != 0 && requested != round.BasePrice {
			return 0, reject(ErrInvalidAmount, "bulk rounds bid the base price %d", round.BasePrice)
		}
		return round.BasePrice, nil
	}

	teams, err := s.repo.ListEligibleTeams(ctx, db, round.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list eligible teams: %w", err)
	}
	eligible := false
	for _, t := range teams {
		if t == teamID {
			eligible = true
			break
		}
	}
	if !eligible {
		return 0, reject(ErrTeamNotEligible, "team %s is not in tiebreaker %s", teamID, round.ID)
	}

	if requested == 0 {
		return round.BasePrice, nil
	}
	if requested < round.BasePrice {
		return 0, reject(ErrInvalidAmount, "bid %d is below base price %d", requested, round.BasePrice)
	}
	return requested, nil
}

// checkHoldings enforces the slot and budget hold for one more bid, or for
// replacing an existing bid's amount.
func (s *AuctionService) checkHoldings(ctx context.Context, db bun.IDB, round *auctiondb.Round, teamID string, amount, replaced int64, replacing bool) error {
	budget, err := s.budgetFor(ctx, db, budgetKey(round, teamID))
	if err != nil {
		return err
	}
	held, total, err := s.repo.TeamHoldings(ctx, db, round.ID, teamID)
	if err != nil {
		return fmt.Errorf("failed to read team holdings: %w", err)
	}

	if !replacing && held >= budget.State().SlotHeadroom() {
		return reject(ErrRosterFull, "team %s holds %d bids with %d open slots", teamID, held, budget.State().SlotHeadroom())
	}
	need := total - replaced + amount
	if need > budget.AvailableBudget {
		return reject(ErrInsufficientBudget, "team %s would hold %d against %d available", teamID, need, budget.AvailableBudget)
	}
	return nil
}
