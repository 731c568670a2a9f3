package auctiondb

import (
	"context"
	"fmt"
	"time"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateRound inserts a new round.
func (r *Impl) CreateRound(ctx context.Context, db bun.IDB, round *Round) error {
	db = r.resolveDB(db)
	if round.ID == uuid.Nil {
		round.ID = uuid.New()
	}
	now := time.Now().UTC()
	round.CreatedAt = now
	round.UpdatedAt = now
	if _, err := db.NewInsert().Model(round).Exec(ctx); err != nil {
		return fmt.Errorf("auctiondb.CreateRound: %w", mapError(err))
	}
	return nil
}

// GetRound reads a round without locking.
func (r *Impl) GetRound(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*Round, error) {
	return r.getRound(ctx, db, roundID, "")
}

// GetRoundForShare reads a round and blocks status changes until the caller's
// transaction ends. Bid placement holds this so completion waits for it.
func (r *Impl) GetRoundForShare(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*Round, error) {
	return r.getRound(ctx, db, roundID, "SHARE")
}

// GetRoundForUpdate reads a round with an exclusive row lock.
func (r *Impl) GetRoundForUpdate(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*Round, error) {
	return r.getRound(ctx, db, roundID, "UPDATE")
}

func (r *Impl) getRound(ctx context.Context, db bun.IDB, roundID uuid.UUID, lock string) (*Round, error) {
	db = r.resolveDB(db)
	round := new(Round)
	q := db.NewSelect().Model(round).Where("ar.id = ?", roundID)
	if lock != "" {
		q = q.For(lock)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("auctiondb.GetRound: %w", mapError(err))
	}
	return round, nil
}

// ListRounds returns a season's rounds, optionally filtered by status.
func (r *Impl) ListRounds(ctx context.Context, db bun.IDB, seasonID string, status auctiondomain.RoundStatus) ([]Round, error) {
	db = r.resolveDB(db)
	var rounds []Round
	q := db.NewSelect().Model(&rounds).Where("ar.season_id = ?", seasonID)
	if status != "" {
		q = q.Where("ar.status = ?", status)
	}
	if err := q.OrderExpr("ar.round_number ASC, ar.created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("auctiondb.ListRounds: %w", mapError(err))
	}
	return rounds, nil
}

// UpdateRound persists status, timing and price changes.
func (r *Impl) UpdateRound(ctx context.Context, db bun.IDB, round *Round) error {
	db = r.resolveDB(db)
	round.UpdatedAt = time.Now().UTC()
	res, err := db.NewUpdate().
		Model(round).
		Column("status", "base_price", "duration_seconds", "scheduled_at", "start_time", "end_time", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("auctiondb.UpdateRound: %w", mapError(err))
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateTiebreakerRound inserts a tiebreaker unless one already exists for
// (parent_round_id, tiebreaker_player_id). It returns the stored round and
// whether this call created it.
func (r *Impl) CreateTiebreakerRound(ctx context.Context, db bun.IDB, round *Round, teamIDs []string) (*Round, bool, error) {
	db = r.resolveDB(db)
	if round.ParentRoundID == nil || round.TiebreakerPlayerID == nil {
		return nil, false, fmt.Errorf("auctiondb.CreateTiebreakerRound: parent round and player are required")
	}
	if round.ID == uuid.Nil {
		round.ID = uuid.New()
	}
	now := time.Now().UTC()
	round.CreatedAt = now
	round.UpdatedAt = now

	res, err := db.NewInsert().
		Model(round).
		On("CONFLICT (parent_round_id, tiebreaker_player_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("auctiondb.CreateTiebreakerRound: %w", mapError(err))
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		existing := new(Round)
		err := db.NewSelect().
			Model(existing).
			Where("ar.parent_round_id = ?", *round.ParentRoundID).
			Where("ar.tiebreaker_player_id = ?", *round.TiebreakerPlayerID).
			Scan(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("auctiondb.CreateTiebreakerRound: %w", mapError(err))
		}
		return existing, false, nil
	}

	teams := make([]EligibleTeam, 0, len(teamIDs))
	for _, id := range teamIDs {
		teams = append(teams, EligibleTeam{RoundID: round.ID, TeamID: id})
	}
	if len(teams) > 0 {
		if _, err := db.NewInsert().Model(&teams).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
			return nil, false, fmt.Errorf("auctiondb.CreateTiebreakerRound: eligible teams: %w", mapError(err))
		}
	}
	return round, true, nil
}

// ListEligibleTeams returns the teams allowed to bid in a tiebreaker round.
func (r *Impl) ListEligibleTeams(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]string, error) {
	db = r.resolveDB(db)
	var ids []string
	err := db.NewSelect().
		Model((*EligibleTeam)(nil)).
		Column("team_id").
		Where("round_id = ?", roundID).
		Order("team_id").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("auctiondb.ListEligibleTeams: %w", mapError(err))
	}
	return ids, nil
}
