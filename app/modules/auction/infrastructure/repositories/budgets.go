package auctiondb

import (
	"context"
	"fmt"
	"time"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	"github.com/uptrace/bun"
)

// EnsureBudget seeds a budget row if the team has none on this track.
func (r *Impl) EnsureBudget(ctx context.Context, db bun.IDB, budget *TeamBudget) error {
	db = r.resolveDB(db)
	budget.UpdatedAt = time.Now().UTC()
	_, err := db.NewInsert().
		Model(budget).
		On("CONFLICT (team_id, season_id, currency_track) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("auctiondb.EnsureBudget: %w", mapError(err))
	}
	return nil
}

// GetBudget reads a budget row.
func (r *Impl) GetBudget(ctx context.Context, db bun.IDB, key auctiondomain.BudgetKey) (*TeamBudget, error) {
	db = r.resolveDB(db)
	b := new(TeamBudget)
	err := db.NewSelect().
		Model(b).
		Where("atb.team_id = ?", key.TeamID).
		Where("atb.season_id = ?", key.SeasonID).
		Where("atb.currency_track = ?", key.Track).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("auctiondb.GetBudget: %w", mapError(err))
	}
	return b, nil
}

// LockBudgets reads and row-locks the given teams' budgets in team_id order so
// concurrent settlements touching the same teams cannot deadlock.
func (r *Impl) LockBudgets(ctx context.Context, db bun.IDB, seasonID, track string, teamIDs []string) ([]TeamBudget, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)
	var budgets []TeamBudget
	err := db.NewSelect().
		Model(&budgets).
		Where("atb.season_id = ?", seasonID).
		Where("atb.currency_track = ?", track).
		Where("atb.team_id IN (?)", bun.In(teamIDs)).
		Order("atb.team_id").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("auctiondb.LockBudgets: %w", mapError(err))
	}
	return budgets, nil
}

// UpdateBudget persists balance and slot counters.
func (r *Impl) UpdateBudget(ctx context.Context, db bun.IDB, budget *TeamBudget) error {
	db = r.resolveDB(db)
	budget.UpdatedAt = time.Now().UTC()
	res, err := db.NewUpdate().
		Model(budget).
		Column("available_budget", "total_spent", "roster_slots_used", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("auctiondb.UpdateBudget: %w", mapError(err))
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}
