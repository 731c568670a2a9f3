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

// CreateTiebreaker opens a tiebreaker for a contested player of a completed
// round. It returns the existing tiebreaker when one was already created.
func (s *AuctionService) CreateTiebreaker(ctx context.Context, actor authdomain.Actor, req CreateTiebreakerRequest) (*TiebreakerRef, error) {
	return execute(s, ctx, "CreateTiebreaker", req.RoundID.String(), func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[*TiebreakerRef, error], error) {
		if err := s.authorize(ctx, actor, authdomain.RoleCommittee); err != nil {
			return fail[*TiebreakerRef](err)
		}

		parent, err := s.loadRound(ctx, db, req.RoundID, lockUpdate)
		if err != nil {
			return done[*TiebreakerRef](err)
		}
		if parent.Status != auctiondomain.RoundStatusCompleted {
			return fail[*TiebreakerRef](reject(ErrInvalidTransition, "tiebreakers are created from completed rounds (status %s)", parent.Status))
		}

		player, err := s.repo.GetRoundPlayer(ctx, db, parent.ID, req.PlayerID)
		if errors.Is(err, auctiondb.ErrNotFound) {
			return fail[*TiebreakerRef](reject(ErrPlayerNotInRound, "player %s is not in round %s", req.PlayerID, parent.ID))
		}
		if err != nil {
			return infra[*TiebreakerRef](fmt.Errorf("failed to load round player: %w", err))
		}
		if player.Status == auctiondomain.PlayerStatusSold {
			return fail[*TiebreakerRef](reject(ErrPlayerAlreadySold, "player %s is already sold", player.PlayerID))
		}
		sold, err := s.repo.IsPlayerSold(ctx, db, parent.SeasonID, parent.CurrencyTrack, player.PlayerID)
		if err != nil {
			return infra[*TiebreakerRef](fmt.Errorf("failed to check player ownership: %w", err))
		}
		if sold {
			return fail[*TiebreakerRef](reject(ErrPlayerAlreadySold, "player %s was sold in another round", player.PlayerID))
		}

		bids, err := s.repo.ListBids(ctx, db, parent.ID)
		if err != nil {
			return infra[*TiebreakerRef](fmt.Errorf("failed to list bids: %w", err))
		}
		pb := auctiondomain.PlayerBids{PlayerID: player.PlayerID, PlayerName: player.PlayerName}
		for _, b := range bids {
			if b.PlayerID == player.PlayerID {
				pb.Bids = append(pb.Bids, auctiondomain.BidInput{TeamID: b.TeamID, Amount: b.Amount, PlacedAt: b.PlacedAt})
			}
		}
		resolution := auctiondomain.Resolve([]auctiondomain.PlayerBids{pb})[0]
		if resolution.Outcome != auctiondomain.OutcomeContested {
			return fail[*TiebreakerRef](reject(ErrNotContested, "player %s has no tie at the top", player.PlayerID))
		}

		base := parent.BasePrice
		if parent.IsTiebreaker() {
			base = resolution.Tied[0].Amount
		}
		if req.BasePrice != nil {
			base = *req.BasePrice
		}
		if base < 0 {
			return fail[*TiebreakerRef](reject(ErrInvalidAmount, "base_price must not be negative"))
		}

		ref, err := s.spawnTiebreaker(ctx, db, parent, player, resolution.TiedTeamIDs(), base)
		if err != nil {
			return infra[*TiebreakerRef](err)
		}

		if ref.Created {
			now := s.now()
			fx.emit(auctiondomain.PlayerStatusUpdated(parent.ID.String(), auctiondomain.PlayerOutcome{
				PlayerID: player.PlayerID,
				Status:   auctiondomain.PlayerStatusContested,
			}, now))
			fx.emit(auctiondomain.RoundUpdated(ref.RoundID.String(), auctiondomain.RoundStatusDraft, nil, nil, now))
			fx.enqueue(func(ctx context.Context) error {
				s.metrics.RecordTiebreakerCreated(ctx)
				return nil
			})
		}
		return ok(&ref)
	})
}

// spawnTiebreaker creates (or finds) the draft tiebreaker round for a
// contested player and links the player to it.
func (s *AuctionService) spawnTiebreaker(ctx context.Context, db bun.IDB, parent *auctiondb.Round, player *auctiondb.RoundPlayer, teamIDs []string, base int64) (TiebreakerRef, error) {
	tb := &auctiondb.Round{
		ID:                 uuid.New(),
		SeasonID:           parent.SeasonID,
		RoundNumber:        parent.RoundNumber,
		Kind:               auctiondomain.RoundKindTiebreaker,
		Status:             auctiondomain.RoundStatusDraft,
		BasePrice:          base,
		CurrencyTrack:      parent.CurrencyTrack,
		DurationSeconds:    parent.DurationSeconds,
		ParentRoundID:      ptr(parent.ID),
		TiebreakerPlayerID: ptr(player.PlayerID),
	}
	stored, created, err := s.repo.CreateTiebreakerRound(ctx, db, tb, teamIDs)
	if err != nil {
		return TiebreakerRef{}, fmt.Errorf("failed to create tiebreaker round: %w", err)
	}

	ref := TiebreakerRef{PlayerID: player.PlayerID, RoundID: stored.ID, TeamIDs: teamIDs, Created: created}
	if created {
		err := s.repo.UpsertRoundPlayers(ctx, db, []auctiondb.RoundPlayer{{
			RoundID:    stored.ID,
			PlayerID:   player.PlayerID,
			PlayerName: player.PlayerName,
			Position:   player.Position,
			Status:     auctiondomain.PlayerStatusPending,
		}})
		if err != nil {
			return TiebreakerRef{}, fmt.Errorf("failed to attach tiebreaker player: %w", err)
		}
	} else {
		teams, err := s.repo.ListEligibleTeams(ctx, db, stored.ID)
		if err != nil {
			return TiebreakerRef{}, fmt.Errorf("failed to list eligible teams: %w", err)
		}
		ref.TeamIDs = teams
	}

	updated := *player
	applyOutcome(&updated, auctiondomain.PlayerOutcome{PlayerID: player.PlayerID, Status: auctiondomain.PlayerStatusContested})
	updated.TiebreakerRoundID = ptr(stored.ID)
	if err := s.repo.UpdateRoundPlayer(ctx, db, &updated); err != nil {
		return TiebreakerRef{}, fmt.Errorf("failed to link contested player: %w", err)
	}
	*player = updated
	return ref, nil
}
