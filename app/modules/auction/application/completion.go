package auctionservice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	auctiondb "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/repositories"
	authdomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/domain"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
	"github.com/Black-And-White-Club/bulk-auction/internal/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Notification kinds sent after settlement.
const (
	NotifyRoundSettled       = "round_settled"
	NotifyTeamRosterComplete = "team_roster_complete"
	NotifyRoundCloseable     = "round_closeable"
)

// RoundSettledNotice is the payload of a round_settled notification.
type RoundSettledNotice struct {
	RoundID     string                       `json:"round_id"`
	SeasonID    string                       `json:"season_id"`
	Mode        auctiondomain.SettlementMode `json:"mode"`
	Sold        int                          `json:"sold"`
	Unsold      int                          `json:"unsold"`
	Contested   int                          `json:"contested"`
	Tiebreakers int                          `json:"tiebreakers"`
}

// RosterCompleteNotice is the payload of a team_roster_complete notification.
type RosterCompleteNotice struct {
	TeamID   string `json:"team_id"`
	SeasonID string `json:"season_id"`
	Track    string `json:"currency_track"`
	Slots    int    `json:"roster_slots_max"`
}

func settleLockKey(roundID uuid.UUID) string {
	return "settle:" + roundID.String()
}

// ownerLockKey serializes settlements that could sell the same player from
// different rounds of a season and track.
func ownerLockKey(seasonID, track, playerID string) string {
	return "owner:" + seasonID + ":" + track + ":" + playerID
}

// roundPlan is the settlement computed for one round before it is applied.
type roundPlan struct {
	players     map[string]*auctiondb.RoundPlayer
	resolutions []auctiondomain.Resolution
	hash        string
	budgets     map[string]*auctiondb.TeamBudget
	settlement  auctiondomain.SettlementPlan
}

// CompleteRound closes a round: uncontested players are settled, contested
// players get a tiebreaker and players without bids go unsold. The batch is
// applied in one transaction; an infrastructure failure leaves the round
// active and the call can be retried. Completing a completed round is a no-op.
func (s *AuctionService) CompleteRound(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, req CompleteRequest) (*CompletionResult, error) {
	return execute(s, ctx, "CompleteRound", roundID.String(), func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[*CompletionResult, error], error) {
		if err := s.authorize(ctx, actor, authdomain.RoleCommittee); err != nil {
			return fail[*CompletionResult](err)
		}
		mode, err := s.settlementMode(req.Mode)
		if err != nil {
			return fail[*CompletionResult](err)
		}

		if err := s.repo.AcquireXactLock(ctx, db, settleLockKey(roundID)); err != nil {
			return infra[*CompletionResult](fmt.Errorf("failed to acquire settlement lock: %w", err))
		}
		round, err := s.loadRound(ctx, db, roundID, lockUpdate)
		if err != nil {
			return done[*CompletionResult](err)
		}

		switch {
		case round.Status == auctiondomain.RoundStatusCompleted:
			res, err := s.completedResult(ctx, db, round)
			if err != nil {
				return infra[*CompletionResult](err)
			}
			return ok(res)
		case round.Status.IsTerminal():
			return fail[*CompletionResult](reject(ErrInvalidTransition, "cannot complete a %s round", round.Status))
		case round.Status.CanTransitionTo(auctiondomain.RoundStatusCompleted):
		case req.Force && round.Status.CanForceComplete():
		default:
			return fail[*CompletionResult](reject(ErrRoundNotActive, "round %s is %s", round.ID, round.Status))
		}

		plan, err := s.planRound(ctx, db, round, mode, true)
		if err != nil {
			return done[*CompletionResult](err)
		}

		now := s.now()
		if round.StartTime == nil {
			round.StartTime = &now
		}
		if round.EndTime == nil || now.Before(*round.EndTime) {
			round.EndTime = &now
		}

		res, err := s.applyPlan(ctx, db, fx, round, plan, mode, now)
		if err != nil {
			return infra[*CompletionResult](err)
		}
		return ok(res)
	})
}

// PreviewCompletion computes the settlement CompleteRound would apply without
// writing anything.
func (s *AuctionService) PreviewCompletion(ctx context.Context, actor authdomain.Actor, roundID uuid.UUID, mode auctiondomain.SettlementMode) (*CompletionResult, error) {
	return execute(s, ctx, "PreviewCompletion", roundID.String(), func(ctx context.Context, db bun.IDB, fx *effects) (results.OperationResult[*CompletionResult, error], error) {
		if err := s.authorize(ctx, actor, authdomain.RoleCommittee); err != nil {
			return fail[*CompletionResult](err)
		}
		m, err := s.settlementMode(mode)
		if err != nil {
			return fail[*CompletionResult](err)
		}
		round, err := s.loadRound(ctx, db, roundID, lockNone)
		if err != nil {
			return done[*CompletionResult](err)
		}
		if round.Status == auctiondomain.RoundStatusCompleted {
			res, err := s.completedResult(ctx, db, round)
			if err != nil {
				return infra[*CompletionResult](err)
			}
			return ok(res)
		}

		plan, err := s.planRound(ctx, db, round, m, false)
		if err != nil {
			return done[*CompletionResult](err)
		}

		res := &CompletionResult{Round: round, Mode: m, Entries: plan.settlement.Entries, SettlementHash: plan.hash, SettledAt: s.now()}
		res.Outcomes = plan.outcomes()
		for _, r := range plan.resolutions {
			if r.Outcome == auctiondomain.OutcomeContested {
				res.Tiebreakers = append(res.Tiebreakers, TiebreakerRef{PlayerID: r.PlayerID, TeamIDs: r.TiedTeamIDs()})
			}
		}
		res.Budgets = plan.budgetStates()
		return ok(res)
	})
}

func (s *AuctionService) settlementMode(requested auctiondomain.SettlementMode) (auctiondomain.SettlementMode, error) {
	if requested == "" {
		requested = s.config.SettlementMode
	}
	mode, err := auctiondomain.ParseSettlementMode(string(requested))
	if err != nil {
		return "", reject(ErrValidationFailed, "%v", err)
	}
	return mode, nil
}

// planRound resolves the round's pending players and plans the settlement.
// With persist set, missing budgets are seeded and the touched budget rows are
// locked in team order.
func (s *AuctionService) planRound(ctx context.Context, db bun.IDB, round *auctiondb.Round, mode auctiondomain.SettlementMode, persist bool) (*roundPlan, error) {
	players, err := s.repo.ListRoundPlayers(ctx, db, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list round players: %w", err)
	}
	bids, err := s.repo.ListBids(ctx, db, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}

	plan := &roundPlan{
		players: make(map[string]*auctiondb.RoundPlayer, len(players)),
		budgets: make(map[string]*auctiondb.TeamBudget),
	}
	byPlayer := make(map[string][]auctiondomain.BidInput)
	for _, b := range bids {
		byPlayer[b.PlayerID] = append(byPlayer[b.PlayerID], auctiondomain.BidInput{TeamID: b.TeamID, Amount: b.Amount, PlacedAt: b.PlacedAt})
	}

	var pending []auctiondomain.PlayerBids
	for i := range players {
		p := &players[i]
		plan.players[p.PlayerID] = p
		if p.Status != auctiondomain.PlayerStatusPending {
			continue
		}
		pending = append(pending, auctiondomain.PlayerBids{PlayerID: p.PlayerID, PlayerName: p.PlayerName, Bids: byPlayer[p.PlayerID]})
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].PlayerID < pending[j].PlayerID })

	plan.hash = auctiondomain.ComputeSettlementHash(pending)
	plan.resolutions = auctiondomain.Resolve(pending)
	if err := s.dropSoldElsewhere(ctx, db, round, plan.resolutions, persist); err != nil {
		return nil, err
	}

	var awards []auctiondomain.Award
	teamSet := make(map[string]struct{})
	for _, r := range plan.resolutions {
		if r.Outcome != auctiondomain.OutcomeAward {
			continue
		}
		awards = append(awards, auctiondomain.Award{
			PlayerID:   r.PlayerID,
			PlayerName: r.PlayerName,
			TeamID:     r.Winner.TeamID,
			Amount:     r.Winner.Amount,
		})
		teamSet[r.Winner.TeamID] = struct{}{}
	}
	teamIDs := make([]string, 0, len(teamSet))
	for id := range teamSet {
		teamIDs = append(teamIDs, id)
	}
	sort.Strings(teamIDs)

	if err := s.loadPlanBudgets(ctx, db, round, teamIDs, persist, plan); err != nil {
		return nil, err
	}

	states := make(map[string]auctiondomain.BudgetState, len(plan.budgets))
	for team, b := range plan.budgets {
		state := b.State()
		if mode == auctiondomain.SettlementRecompute {
			sum, err := s.repo.SumLedger(ctx, db, b.Key())
			if err != nil {
				return nil, fmt.Errorf("failed to sum ledger: %w", err)
			}
			owned, err := s.repo.CountOwnedPlayers(ctx, db, round.SeasonID, round.CurrencyTrack, team)
			if err != nil {
				return nil, fmt.Errorf("failed to count owned players: %w", err)
			}
			state = auctiondomain.RecomputeBudget(state, sum, owned)
		}
		states[team] = state
	}

	plan.settlement = auctiondomain.PlanSettlement(awards, states)
	return plan, nil
}

// dropSoldElsewhere turns awards and contests for players already owned in
// the season and track into unsold outcomes. With persist set each player's
// ownership lock is held until the transaction ends.
func (s *AuctionService) dropSoldElsewhere(ctx context.Context, db bun.IDB, round *auctiondb.Round, resolutions []auctiondomain.Resolution, persist bool) error {
	for i := range resolutions {
		r := &resolutions[i]
		if r.Outcome == auctiondomain.OutcomeUnsold {
			continue
		}
		if persist {
			if err := s.repo.AcquireXactLock(ctx, db, ownerLockKey(round.SeasonID, round.CurrencyTrack, r.PlayerID)); err != nil {
				return fmt.Errorf("failed to acquire ownership lock: %w", err)
			}
		}
		sold, err := s.repo.IsPlayerSold(ctx, db, round.SeasonID, round.CurrencyTrack, r.PlayerID)
		if err != nil {
			return fmt.Errorf("failed to check player ownership: %w", err)
		}
		if sold {
			r.MarkSold()
		}
	}
	return nil
}

func (s *AuctionService) loadPlanBudgets(ctx context.Context, db bun.IDB, round *auctiondb.Round, teamIDs []string, persist bool, plan *roundPlan) error {
	if len(teamIDs) == 0 {
		return nil
	}

	if !persist {
		for _, team := range teamIDs {
			key := budgetKey(round, team)
			b, err := s.repo.GetBudget(ctx, db, key)
			if errors.Is(err, auctiondb.ErrNotFound) {
				b, err = s.seedBudget(ctx, key)
				if CodeOf(err) == CodeBudgetNotFound {
					continue
				}
			}
			if err != nil {
				return err
			}
			plan.budgets[team] = b
		}
		return nil
	}

	for _, team := range teamIDs {
		if _, err := s.budgetFor(ctx, db, budgetKey(round, team)); err != nil {
			if CodeOf(err) == CodeBudgetNotFound {
				continue
			}
			return err
		}
	}
	locked, err := s.repo.LockBudgets(ctx, db, round.SeasonID, round.CurrencyTrack, teamIDs)
	if err != nil {
		return fmt.Errorf("failed to lock budgets: %w", err)
	}
	for i := range locked {
		plan.budgets[locked[i].TeamID] = &locked[i]
	}
	return nil
}

// applyPlan writes the plan, marks the round completed and queues effects.
func (s *AuctionService) applyPlan(
	ctx context.Context,
	db bun.IDB,
	fx *effects,
	round *auctiondb.Round,
	plan *roundPlan,
	mode auctiondomain.SettlementMode,
	now time.Time,
) (*CompletionResult, error) {
	res := &CompletionResult{Round: round, Mode: mode, Entries: plan.settlement.Entries, SettlementHash: plan.hash, SettledAt: now}

	planned := make(map[string]auctiondomain.PlayerOutcome, len(plan.settlement.Outcomes))
	for _, o := range plan.settlement.Outcomes {
		planned[o.PlayerID] = o
	}

	var resolved []auctiondomain.PlayerOutcome
	for _, r := range plan.resolutions {
		player := plan.players[r.PlayerID]
		var outcome auctiondomain.PlayerOutcome

		switch r.Outcome {
		case auctiondomain.OutcomeUnsold:
			outcome = auctiondomain.PlayerOutcome{PlayerID: r.PlayerID, Status: auctiondomain.PlayerStatusUnsold, Reason: r.Reason}
		case auctiondomain.OutcomeAward:
			outcome = planned[r.PlayerID]
		case auctiondomain.OutcomeContested:
			outcome = auctiondomain.PlayerOutcome{PlayerID: r.PlayerID, Status: auctiondomain.PlayerStatusContested}
			base := round.BasePrice
			if round.IsTiebreaker() {
				base = r.Tied[0].Amount
			}
			var ref TiebreakerRef
			err := savepoint(ctx, db, func(ctx context.Context, db bun.IDB) error {
				var err error
				ref, err = s.spawnTiebreaker(ctx, db, round, player, r.TiedTeamIDs(), base)
				return err
			})
			if err != nil {
				s.logger.WarnContext(ctx, "Failed to create tiebreaker round",
					attr.ExtractCorrelationID(ctx),
					attr.RoundID("round_id", round.ID),
					attr.String("player_id", r.PlayerID),
					attr.Error(err),
				)
				res.TiebreakerFailures = append(res.TiebreakerFailures, TiebreakerFailure{PlayerID: r.PlayerID, Error: err.Error()})
				player.Status = auctiondomain.PlayerStatusContested
				if err := s.repo.UpdateRoundPlayer(ctx, db, player); err != nil {
					return nil, fmt.Errorf("failed to mark player contested: %w", err)
				}
			} else {
				res.Tiebreakers = append(res.Tiebreakers, ref)
			}
			res.Outcomes = append(res.Outcomes, outcome)
			fx.emit(auctiondomain.PlayerStatusUpdated(round.ID.String(), outcome, now))
			continue
		}

		applyOutcome(player, outcome)
		if err := s.repo.UpdateRoundPlayer(ctx, db, player); err != nil {
			return nil, fmt.Errorf("failed to update player %s: %w", player.PlayerID, err)
		}
		res.Outcomes = append(res.Outcomes, outcome)
		resolved = append(resolved, outcome)
		fx.emit(auctiondomain.PlayerStatusUpdated(round.ID.String(), outcome, now))

		if outcome.Status == auctiondomain.PlayerStatusSold {
			res.Assignments = append(res.Assignments, auctiondomain.RosterAssignment{
				RoundID:    round.ID.String(),
				SeasonID:   round.SeasonID,
				Track:      round.CurrencyTrack,
				PlayerID:   player.PlayerID,
				PlayerName: player.PlayerName,
				TeamID:     outcome.WinningTeamID,
				Amount:     outcome.WinningBid,
			})
		}
	}

	if err := s.writeBudgets(ctx, db, round, plan, mode, now); err != nil {
		return nil, err
	}
	res.Budgets = plan.budgetStates()

	if round.IsTiebreaker() {
		for _, o := range resolved {
			if err := s.propagateOutcome(ctx, db, fx, round, o, now); err != nil {
				return nil, err
			}
		}
	}

	round.Status = auctiondomain.RoundStatusCompleted
	if err := s.repo.UpdateRound(ctx, db, round); err != nil {
		return nil, fmt.Errorf("failed to complete round: %w", err)
	}

	notice := summarize(round, mode, res)
	if err := s.repo.UpsertSettlement(ctx, db, &auctiondb.Settlement{
		RoundID:            round.ID,
		ProcessingHash:     plan.hash,
		Mode:               mode,
		SoldCount:          notice.Sold,
		UnsoldCount:        notice.Unsold,
		ContestedCount:     notice.Contested,
		TiebreakersCreated: notice.Tiebreakers,
		SettledAt:          now,
	}); err != nil {
		return nil, fmt.Errorf("failed to record settlement: %w", err)
	}

	fx.emit(auctiondomain.RoundUpdated(round.ID.String(), round.Status, round.StartTime, round.EndTime, now))
	fx.notify(NotifyRoundSettled, notice)
	for _, b := range res.Budgets {
		if b.SlotsMax > 0 && b.SlotsUsed >= b.SlotsMax {
			fx.notify(NotifyTeamRosterComplete, RosterCompleteNotice{
				TeamID:   b.Key.TeamID,
				SeasonID: b.Key.SeasonID,
				Track:    b.Key.Track,
				Slots:    b.SlotsMax,
			})
		}
	}
	if s.jobs != nil {
		fx.enqueue(func(ctx context.Context) error {
			return s.jobs.CancelRoundJobs(ctx, round.ID)
		})
	}
	if s.jobs != nil && len(res.Assignments) > 0 {
		assignments := res.Assignments
		fx.enqueue(func(ctx context.Context) error {
			return s.jobs.EnqueueRosterSync(ctx, round.ID, assignments)
		})
	}
	fx.enqueue(func(ctx context.Context) error {
		s.metrics.RecordPlayerOutcome(ctx, string(auctiondomain.PlayerStatusSold), notice.Sold)
		s.metrics.RecordPlayerOutcome(ctx, string(auctiondomain.PlayerStatusUnsold), notice.Unsold)
		s.metrics.RecordPlayerOutcome(ctx, string(auctiondomain.PlayerStatusContested), notice.Contested)
		for range notice.Tiebreakers {
			s.metrics.RecordTiebreakerCreated(ctx)
		}
		return nil
	})

	return res, nil
}

// writeBudgets persists the planned balances and appends the ledger entries.
func (s *AuctionService) writeBudgets(ctx context.Context, db bun.IDB, round *auctiondb.Round, plan *roundPlan, mode auctiondomain.SettlementMode, now time.Time) error {
	touched := make(map[string]bool)
	for _, e := range plan.settlement.Entries {
		touched[e.Key.TeamID] = true
	}

	teams := make([]string, 0, len(plan.budgets))
	for team := range plan.budgets {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	for _, team := range teams {
		if !touched[team] && mode != auctiondomain.SettlementRecompute {
			continue
		}
		row := plan.budgets[team]
		row.Apply(plan.settlement.Budgets[team])
		if err := s.repo.UpdateBudget(ctx, db, row); err != nil {
			return fmt.Errorf("failed to update budget for team %s: %w", team, err)
		}
	}

	if len(plan.settlement.Entries) == 0 {
		return nil
	}
	reason := auctiondomain.ReasonAuctionAward
	if round.IsTiebreaker() {
		reason = auctiondomain.ReasonTiebreakerAward
	}
	entries := make([]auctiondb.LedgerEntry, 0, len(plan.settlement.Entries))
	for _, e := range plan.settlement.Entries {
		entries = append(entries, auctiondb.LedgerEntry{
			TeamID:        e.Key.TeamID,
			SeasonID:      e.Key.SeasonID,
			CurrencyTrack: e.Key.Track,
			Amount:        e.Amount,
			BalanceAfter:  e.BalanceAfter,
			Reason:        reason,
			RoundID:       ptr(round.ID),
			PlayerID:      ptr(e.PlayerID),
			PlayerName:    ptr(e.PlayerName),
			Metadata: map[string]any{
				"round_id":     round.ID.String(),
				"round_number": round.RoundNumber,
				"player_id":    e.PlayerID,
				"player_name":  e.PlayerName,
				"mode":         string(mode),
			},
			CreatedAt: now,
		})
	}
	if err := s.repo.AppendLedgerEntries(ctx, db, entries); err != nil {
		return fmt.Errorf("failed to append ledger entries: %w", err)
	}
	return nil
}

// propagateOutcome copies a tiebreaker's final outcome onto the contested
// player rows of every ancestor round.
func (s *AuctionService) propagateOutcome(ctx context.Context, db bun.IDB, fx *effects, round *auctiondb.Round, outcome auctiondomain.PlayerOutcome, now time.Time) error {
	parentID := round.ParentRoundID
	for parentID != nil {
		parent, err := s.repo.GetRound(ctx, db, *parentID)
		if err != nil {
			return fmt.Errorf("failed to load parent round %s: %w", *parentID, err)
		}
		player, err := s.repo.GetRoundPlayer(ctx, db, parent.ID, outcome.PlayerID)
		if err != nil {
			return fmt.Errorf("failed to load parent round player: %w", err)
		}
		applyOutcome(player, outcome)
		if err := s.repo.UpdateRoundPlayer(ctx, db, player); err != nil {
			return fmt.Errorf("failed to update parent round player: %w", err)
		}
		fx.emit(auctiondomain.PlayerStatusUpdated(parent.ID.String(), outcome, now))
		parentID = parent.ParentRoundID
	}
	return nil
}

// completedResult describes a round that was already settled.
func (s *AuctionService) completedResult(ctx context.Context, db bun.IDB, round *auctiondb.Round) (*CompletionResult, error) {
	res := &CompletionResult{Round: round, AlreadyCompleted: true, Mode: s.config.SettlementMode}
	settlement, err := s.repo.GetSettlement(ctx, db, round.ID)
	switch {
	case err == nil:
		res.Mode = settlement.Mode
		res.SettlementHash = settlement.ProcessingHash
		res.SettledAt = settlement.SettledAt
	case !errors.Is(err, auctiondb.ErrNotFound):
		return nil, fmt.Errorf("failed to load settlement: %w", err)
	}

	players, err := s.repo.ListRoundPlayers(ctx, db, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list round players: %w", err)
	}
	for _, p := range players {
		res.Outcomes = append(res.Outcomes, outcomeOf(p))
		if p.TiebreakerRoundID != nil {
			res.Tiebreakers = append(res.Tiebreakers, TiebreakerRef{PlayerID: p.PlayerID, RoundID: *p.TiebreakerRoundID})
		}
	}
	return res, nil
}

func (p *roundPlan) outcomes() []auctiondomain.PlayerOutcome {
	planned := make(map[string]auctiondomain.PlayerOutcome, len(p.settlement.Outcomes))
	for _, o := range p.settlement.Outcomes {
		planned[o.PlayerID] = o
	}
	out := make([]auctiondomain.PlayerOutcome, 0, len(p.resolutions))
	for _, r := range p.resolutions {
		switch r.Outcome {
		case auctiondomain.OutcomeUnsold:
			out = append(out, auctiondomain.PlayerOutcome{PlayerID: r.PlayerID, Status: auctiondomain.PlayerStatusUnsold, Reason: r.Reason})
		case auctiondomain.OutcomeAward:
			out = append(out, planned[r.PlayerID])
		case auctiondomain.OutcomeContested:
			out = append(out, auctiondomain.PlayerOutcome{PlayerID: r.PlayerID, Status: auctiondomain.PlayerStatusContested})
		}
	}
	return out
}

func (p *roundPlan) budgetStates() []auctiondomain.BudgetState {
	out := make([]auctiondomain.BudgetState, 0, len(p.settlement.Budgets))
	for _, b := range p.settlement.Budgets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.TeamID < out[j].Key.TeamID })
	return out
}

func applyOutcome(p *auctiondb.RoundPlayer, o auctiondomain.PlayerOutcome) {
	p.Status = o.Status
	p.WinningTeamID = nil
	p.WinningBid = nil
	p.UnsoldReason = nil
	switch o.Status {
	case auctiondomain.PlayerStatusSold:
		p.WinningTeamID = ptr(o.WinningTeamID)
		p.WinningBid = ptr(o.WinningBid)
	case auctiondomain.PlayerStatusUnsold:
		if o.Reason != "" {
			p.UnsoldReason = ptr(o.Reason)
		}
	}
}

func outcomeOf(p auctiondb.RoundPlayer) auctiondomain.PlayerOutcome {
	o := auctiondomain.PlayerOutcome{PlayerID: p.PlayerID, Status: p.Status}
	if p.WinningTeamID != nil {
		o.WinningTeamID = *p.WinningTeamID
	}
	if p.WinningBid != nil {
		o.WinningBid = *p.WinningBid
	}
	if p.UnsoldReason != nil {
		o.Reason = *p.UnsoldReason
	}
	return o
}

func summarize(round *auctiondb.Round, mode auctiondomain.SettlementMode, res *CompletionResult) RoundSettledNotice {
	n := RoundSettledNotice{RoundID: round.ID.String(), SeasonID: round.SeasonID, Mode: mode}
	for _, o := range res.Outcomes {
		switch o.Status {
		case auctiondomain.PlayerStatusSold:
			n.Sold++
		case auctiondomain.PlayerStatusUnsold:
			n.Unsold++
		case auctiondomain.PlayerStatusContested:
			n.Contested++
		}
	}
	for _, t := range res.Tiebreakers {
		if t.Created {
			n.Tiebreakers++
		}
	}
	return n
}
