package auctionservice

import (
	"context"
	"fmt"
	"strings"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	auctiondb "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/repositories"
	authdomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/domain"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
	"github.com/Black-And-White-Club/bulk-auction/internal/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateRound creates a draft bulk round.
func (s *AuctionService) CreateRound(ctx context.Context, actor authdomain.Actor, req CreateRoundRequest) (*RoundView, error) {
	return execute(s, ctx, "CreateRound", req.SeasonID, func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[*RoundView, error], error) {
		if err := s.authorize(ctx, actor, authdomain.RoleCommittee); err != nil {
			return fail[*RoundView](err)
		}
		if strings.TrimSpace(req.SeasonID) == "" {
			return fail[*RoundView](reject(ErrValidationFailed, "season_id is required"))
		}
		if req.BasePrice < 0 {
			return fail[*RoundView](reject(ErrInvalidAmount, "base_price must not be negative"))
		}
		if req.DurationSeconds <= 0 {
			return fail[*RoundView](reject(ErrValidationFailed, "duration_seconds must be positive"))
		}
		if err := validatePlayers(req.Players); err != nil {
			return fail[*RoundView](err)
		}

		track := req.CurrencyTrack
		if track == "" {
			track = s.config.DefaultTrack
		}
		if err := s.rejectOwned(ctx, db, req.SeasonID, track, req.Players); err != nil {
			return done[*RoundView](err)
		}

		round := &auctiondb.Round{
			ID:              uuid.New(),
			SeasonID:        req.SeasonID,
			RoundNumber:     req.RoundNumber,
			Kind:            auctiondomain.RoundKindNormal,
			Status:          auctiondomain.RoundStatusDraft,
			BasePrice:       req.BasePrice,
			CurrencyTrack:   track,
			DurationSeconds: req.DurationSeconds,
		}
		if err := s.repo.CreateRound(ctx, db, round); err != nil {
			return infra[*RoundView](fmt.Errorf("failed to create round: %w", err))
		}

		players := toRoundPlayers(round.ID, req.Players)
		if err := s.repo.UpsertRoundPlayers(ctx, db, players); err != nil {
			return infra[*RoundView](fmt.Errorf("failed to attach players: %w", err))
		}

		view := &RoundView{Round: round, Players: make([]PlayerView, 0, len(players))}
		for _, p := range players {
			view.Players = append(view.Players, PlayerView{RoundPlayer: p})
		}
		return ok(view)
	})
}

// AddRoundPlayers attaches players to a round that has not started.
func (s *AuctionService) AddRoundPlayers(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, players []PlayerInput) (*RoundView, error) {
	return execute(s, ctx, "AddRoundPlayers", roundID.String(), func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[*RoundView, error], error) {
		if err := s.authorize(ctx, actor, authdomain.RoleCommittee); err != nil {
			return fail[*RoundView](err)
		}
		if len(players) == 0 {
			return fail[*RoundView](reject(ErrValidationFailed, "no players given"))
		}
		if err := validatePlayers(players); err != nil {
			return fail[*RoundView](err)
		}

		round, err := s.loadRound(ctx, db, roundID, lockUpdate)
		if err != nil {
			return done[*RoundView](err)
		}
		if round.IsTiebreaker() {
			return fail[*RoundView](reject(ErrValidationFailed, "tiebreaker rounds hold a single player"))
		}
		if round.Status != auctiondomain.RoundStatusDraft && round.Status != auctiondomain.RoundStatusScheduled {
			return fail[*RoundView](reject(ErrInvalidTransition, "players can only be added before activation (status %s)", round.Status))
		}
		if err := s.rejectOwned(ctx, db, round.SeasonID, round.CurrencyTrack, players); err != nil {
			return done[*RoundView](err)
		}

		if err := s.repo.UpsertRoundPlayers(ctx, db, toRoundPlayers(round.ID, players)); err != nil {
			return infra[*RoundView](fmt.Errorf("failed to attach players: %w", err))
		}

		view, err := s.roundView(ctx, db, round)
		if err != nil {
			return infra[*RoundView](err)
		}
		return ok(view)
	})
}

// ListRoundJobs lists the queued jobs of a round.
func (s *AuctionService) ListRoundJobs(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID) ([]ScheduledJob, error) {
	return execute(s, ctx, "ListRoundJobs", roundID.String(), func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[[]ScheduledJob, error], error) {
		if err := s.authorize(ctx, actor, authdomain.RoleCommittee); err != nil {
			return fail[[]ScheduledJob](err)
		}
		if _, err := s.loadRound(ctx, db, roundID, lockNone); err != nil {
			return done[[]ScheduledJob](err)
		}
		if s.jobs == nil {
			return ok([]ScheduledJob{})
		}
		jobs, err := s.jobs.GetScheduledJobs(ctx, roundID)
		if err != nil {
			return infra[[]ScheduledJob](fmt.Errorf("failed to list round jobs: %w", err))
		}
		return ok(jobs)
	})
}

// rejectOwned fails when any of the players was already bought in the season
// and track.
func (s *AuctionService) rejectOwned(ctx context.Context, db bun.IDB, seasonID, track string, players []PlayerInput) error {
	for _, p := range players {
		sold, err := s.repo.IsPlayerSold(ctx, db, seasonID, track, p.PlayerID)
		if err != nil {
			return fmt.Errorf("failed to check player ownership: %w", err)
		}
		if sold {
			return reject(ErrPlayerAlreadySold, "player %s was sold in another round", p.PlayerID)
		}
	}
	return nil
}

// GetRound returns the round with its players and live bid counts.
func (s *AuctionService) GetRound(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID) (*RoundView, error) {
	return execute(s, ctx, "GetRound", roundID.String(), func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[*RoundView, error], error) {
		if err := s.authorize(ctx, actor, authdomain.RoleViewer); err != nil {
			return fail[*RoundView](err)
		}
		round, err := s.loadRound(ctx, db, roundID, lockNone)
		if err != nil {
			return done[*RoundView](err)
		}
		view, err := s.roundView(ctx, db, round)
		if err != nil {
			return infra[*RoundView](err)
		}
		return ok(view)
	})
}

// ListRounds returns a season's rounds, optionally filtered by status.
func (s *AuctionService) ListRounds(ctx context.Context, actor authdomain.Actor, seasonID string, status auctiondomain.RoundStatus) ([]auctiondb.Round, error) {
	return execute(s, ctx, "ListRounds", seasonID, func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[[]auctiondb.Round, error], error) {
		if err := s.authorize(ctx, actor, authdomain.RoleViewer); err != nil {
			return fail[[]auctiondb.Round](err)
		}
		if seasonID == "" {
			return fail[[]auctiondb.Round](reject(ErrValidationFailed, "season_id is required"))
		}
		if status != "" && !status.IsValid() {
			return fail[[]auctiondb.Round](reject(ErrValidationFailed, "unknown status %q", status))
		}
		rounds, err := s.repo.ListRounds(ctx, db, seasonID, status)
		if err != nil {
			return infra[[]auctiondb.Round](err)
		}
		return ok(rounds)
	})
}

// ScheduleRound plans a draft round's activation and queues the activation job.
func (s *AuctionService) ScheduleRound(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, req ScheduleRequest) (*auctiondb.Round, error) {
	return execute(s, ctx, "ScheduleRound", roundID.String(), func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[*auctiondb.Round, error], error) {
		if err := s.authorize(ctx, actor, authdomain.RoleCommittee); err != nil {
			return fail[*auctiondb.Round](err)
		}
		now := s.now()
		startAt, err := parseStartTime(req.StartAt, req.Timezone, now)
		if err != nil {
			return fail[*auctiondb.Round](reject(ErrValidationFailed, "%v", err))
		}

		round, err := s.loadRound(ctx, db, roundID, lockUpdate)
		if err != nil {
			return done[*auctiondb.Round](err)
		}
		if !round.Status.CanTransitionTo(auctiondomain.RoundStatusScheduled) {
			return fail[*auctiondb.Round](reject(ErrInvalidTransition, "cannot schedule a %s round", round.Status))
		}
		if err := s.requirePlayers(ctx, db, round); err != nil {
			return done[*auctiondb.Round](err)
		}

		round.Status = auctiondomain.RoundStatusScheduled
		round.ScheduledAt = &startAt
		if err := s.repo.UpdateRound(ctx, db, round); err != nil {
			return infra[*auctiondb.Round](fmt.Errorf("failed to schedule round: %w", err))
		}

		fx.emit(auctiondomain.RoundUpdated(round.ID.String(), round.Status, round.ScheduledAt, nil, now))
		if s.jobs != nil {
			fx.enqueue(func(ctx context.Context) error {
				return s.jobs.ScheduleActivation(ctx, round.ID, startAt)
			})
		}
		return ok(round)
	})
}

// ActivateRound opens a round for bidding now.
func (s *AuctionService) ActivateRound(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID) (*auctiondb.Round, error) {
	return s.activate(ctx, actor, roundID, false)
}

// ActivateScheduledRound is called when a round's planned start arrives. A
// round that already left the scheduled state is returned unchanged.
func (s *AuctionService) ActivateScheduledRound(ctx context.Context, roundID uuid.UUID) (*auctiondb.Round, error) {
	return s.activate(ctx, authdomain.System, roundID, true)
}

func (s *AuctionService) activate(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, fromSchedule bool) (*auctiondb.Round, error) {
	return execute(s, ctx, "ActivateRound", roundID.String(), func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[*auctiondb.Round, error], error) {
		if err := s.authorize(ctx, actor, authdomain.RoleCommittee); err != nil {
			return fail[*auctiondb.Round](err)
		}

		round, err := s.loadRound(ctx, db, roundID, lockUpdate)
		if err != nil {
			return done[*auctiondb.Round](err)
		}
		if fromSchedule && round.Status != auctiondomain.RoundStatusScheduled {
			s.logger.InfoContext(ctx, "Skipping scheduled activation",
				attr.ExtractCorrelationID(ctx),
				attr.RoundID("round_id", round.ID),
				attr.String("status", string(round.Status)),
			)
			return ok(round)
		}
		if !round.Status.CanTransitionTo(auctiondomain.RoundStatusActive) {
			return fail[*auctiondb.Round](reject(ErrInvalidTransition, "cannot activate a %s round", round.Status))
		}
		if err := s.requirePlayers(ctx, db, round); err != nil {
			return done[*auctiondb.Round](err)
		}

		wasScheduled := round.Status == auctiondomain.RoundStatusScheduled
		now := s.now()
		end := now.Add(round.Duration())
		round.Status = auctiondomain.RoundStatusActive
		round.StartTime = &now
		round.EndTime = &end
		if err := s.repo.UpdateRound(ctx, db, round); err != nil {
			return infra[*auctiondb.Round](fmt.Errorf("failed to activate round: %w", err))
		}

		fx.emit(auctiondomain.RoundUpdated(round.ID.String(), round.Status, round.StartTime, round.EndTime, now))
		if s.jobs != nil {
			if wasScheduled && !fromSchedule {
				fx.enqueue(func(ctx context.Context) error {
					return s.jobs.CancelRoundJobs(ctx, round.ID)
				})
			}
			fx.enqueue(func(ctx context.Context) error {
				return s.jobs.ScheduleCloseReminder(ctx, round.ID, end)
			})
		}
		return ok(round)
	})
}

// CancelRound cancels a round that has not started. Active and completed
// rounds cannot be cancelled.
func (s *AuctionService) CancelRound(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID) (*auctiondb.Round, error) {
	return execute(s, ctx, "CancelRound", roundID.String(), func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[*auctiondb.Round, error], error) {
		if err := s.authorize(ctx, actor, authdomain.RoleCommittee); err != nil {
			return fail[*auctiondb.Round](err)
		}

		round, err := s.loadRound(ctx, db, roundID, lockUpdate)
		if err != nil {
			return done[*auctiondb.Round](err)
		}
		if !round.Status.CanTransitionTo(auctiondomain.RoundStatusCancelled) {
			return fail[*auctiondb.Round](reject(ErrInvalidTransition, "cannot cancel a %s round", round.Status))
		}

		wasScheduled := round.Status == auctiondomain.RoundStatusScheduled
		round.Status = auctiondomain.RoundStatusCancelled
		if err := s.repo.UpdateRound(ctx, db, round); err != nil {
			return infra[*auctiondb.Round](fmt.Errorf("failed to cancel round: %w", err))
		}

		fx.emit(auctiondomain.RoundUpdated(round.ID.String(), round.Status, round.StartTime, round.EndTime, s.now()))
		if s.jobs != nil && wasScheduled {
			fx.enqueue(func(ctx context.Context) error {
				return s.jobs.CancelRoundJobs(ctx, round.ID)
			})
		}
		return ok(round)
	})
}

func (s *AuctionService) requirePlayers(ctx context.Context, db bun.IDB, round *auctiondb.Round) error {
	players, err := s.repo.ListRoundPlayers(ctx, db, round.ID)
	if err != nil {
		return fmt.Errorf("failed to list round players: %w", err)
	}
	if len(players) == 0 {
		return reject(ErrNoPlayers, "round %s has no players", round.ID)
	}
	return nil
}

func (s *AuctionService) roundView(ctx context.Context, db bun.IDB, round *auctiondb.Round) (*RoundView, error) {
	players, err := s.repo.ListRoundPlayers(ctx, db, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list round players: %w", err)
	}
	counts, err := s.repo.CountBidsByPlayer(ctx, db, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count bids: %w", err)
	}

	view := &RoundView{Round: round, Players: make([]PlayerView, 0, len(players))}
	for _, p := range players {
		view.Players = append(view.Players, PlayerView{RoundPlayer: p, BidCount: counts[p.PlayerID]})
	}

	if round.IsTiebreaker() {
		teams, err := s.repo.ListEligibleTeams(ctx, db, round.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list eligible teams: %w", err)
		}
		view.EligibleTeams = teams
	}
	return view, nil
}
