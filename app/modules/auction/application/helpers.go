package auctionservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	auctiondb "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/repositories"
	authdomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/domain"
	"github.com/Black-And-White-Club/bulk-auction/internal/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// done routes err to a failure result when it is a rejection and to an
// infrastructure error otherwise.
func done[S any](err error) (results.OperationResult[S, error], error) {
	if CodeOf(err) != "" {
		return fail[S](err)
	}
	return infra[S](err)
}

func (s *AuctionService) authorize(ctx context.Context, actor authdomain.Actor, role authdomain.Role) error {
	if s.auth == nil {
		return nil
	}
	if err := s.auth.Authorize(ctx, actor, role); err != nil {
		return &AuctionError{Code: CodeForbidden, Message: err.Error(), Err: err}
	}
	return nil
}

func (s *AuctionService) authorizeTeam(ctx context.Context, actor authdomain.Actor, teamID string) error {
	if s.auth == nil {
		return nil
	}
	if err := s.auth.AuthorizeTeam(ctx, actor, teamID); err != nil {
		return &AuctionError{Code: CodeForbidden, Message: err.Error(), Err: err}
	}
	return nil
}

// authorizeTeamView lets committee members read any team and teams read
// their own.
func (s *AuctionService) authorizeTeamView(ctx context.Context, actor authdomain.Actor, teamID string) error {
	if actor.Role.Satisfies(authdomain.RoleCommittee) {
		return s.authorize(ctx, actor, authdomain.RoleCommittee)
	}
	return s.authorizeTeam(ctx, actor, teamID)
}

type lockMode int

const (
	lockNone lockMode = iota
	lockShare
	lockUpdate
)

func (s *AuctionService) loadRound(ctx context.Context, db bun.IDB, roundID uuid.UUID, mode lockMode) (*auctiondb.Round, error) {
	var (
		round *auctiondb.Round
		err   error
	)
	switch mode {
	case lockShare:
		round, err = s.repo.GetRoundForShare(ctx, db, roundID)
	case lockUpdate:
		round, err = s.repo.GetRoundForUpdate(ctx, db, roundID)
	default:
		round, err = s.repo.GetRound(ctx, db, roundID)
	}
	if errors.Is(err, auctiondb.ErrNotFound) {
		return nil, reject(ErrRoundNotFound, "round %s not found", roundID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load round: %w", err)
	}
	return round, nil
}

// budgetFor returns the team's budget row, seeding it from the season
// directory the first time the team is seen on this track.
func (s *AuctionService) budgetFor(ctx context.Context, db bun.IDB, key auctiondomain.BudgetKey) (*auctiondb.TeamBudget, error) {
	budget, err := s.repo.GetBudget(ctx, db, key)
	if err == nil {
		return budget, nil
	}
	if !errors.Is(err, auctiondb.ErrNotFound) {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}

	seed, err := s.seedBudget(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.repo.EnsureBudget(ctx, db, seed); err != nil {
		return nil, fmt.Errorf("failed to seed budget: %w", err)
	}
	budget, err = s.repo.GetBudget(ctx, db, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load seeded budget: %w", err)
	}
	return budget, nil
}

// seedBudget builds an unsaved budget row from the season directory.
func (s *AuctionService) seedBudget(ctx context.Context, key auctiondomain.BudgetKey) (*auctiondb.TeamBudget, error) {
	if s.seasons == nil {
		return nil, reject(ErrBudgetNotFound, "no budget for team %s", key.TeamID)
	}
	defaults, err := s.seasons.BudgetDefaults(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read season budget defaults: %w", err)
	}
	return &auctiondb.TeamBudget{
		TeamID:          key.TeamID,
		SeasonID:        key.SeasonID,
		CurrencyTrack:   key.Track,
		StartingBalance: defaults.StartingBalance,
		AvailableBudget: defaults.StartingBalance,
		RosterSlotsMax:  defaults.RosterSlotsMax,
	}, nil
}

func budgetKey(round *auctiondb.Round, teamID string) auctiondomain.BudgetKey {
	return auctiondomain.BudgetKey{TeamID: teamID, SeasonID: round.SeasonID, Track: round.CurrencyTrack}
}

func validatePlayers(players []PlayerInput) error {
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if strings.TrimSpace(p.PlayerID) == "" || strings.TrimSpace(p.PlayerName) == "" {
			return reject(ErrValidationFailed, "player_id and player_name are required")
		}
		if _, dup := seen[p.PlayerID]; dup {
			return reject(ErrValidationFailed, "duplicate player %s", p.PlayerID)
		}
		seen[p.PlayerID] = struct{}{}
	}
	return nil
}

func toRoundPlayers(roundID uuid.UUID, players []PlayerInput) []auctiondb.RoundPlayer {
	out := make([]auctiondb.RoundPlayer, 0, len(players))
	for _, p := range players {
		out = append(out, auctiondb.RoundPlayer{
			RoundID:    roundID,
			PlayerID:   p.PlayerID,
			PlayerName: p.PlayerName,
			Position:   p.Position,
			Status:     auctiondomain.PlayerStatusPending,
		})
	}
	return out
}

func ptr[T any](v T) *T { return &v }
