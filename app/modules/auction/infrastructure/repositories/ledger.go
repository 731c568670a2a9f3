package auctiondb

import (
	"context"
	"fmt"
	"time"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	"github.com/uptrace/bun"
)

// AppendLedgerEntries inserts entries in slice order, so IDs follow the
// running-balance order computed by the caller.
func (r *Impl) AppendLedgerEntries(ctx context.Context, db bun.IDB, entries []LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	now := time.Now().UTC()
	for i := range entries {
		if entries[i].CreatedAt.IsZero() {
			entries[i].CreatedAt = now
		}
	}
	if _, err := db.NewInsert().Model(&entries).Exec(ctx); err != nil {
		return fmt.Errorf("auctiondb.AppendLedgerEntries: %w", mapError(err))
	}
	return nil
}

// ListLedgerEntries returns a team's entries oldest first. limit <= 0 returns
// all of them.
func (r *Impl) ListLedgerEntries(ctx context.Context, db bun.IDB, key auctiondomain.BudgetKey, limit int) ([]LedgerEntry, error) {
	db = r.resolveDB(db)
	var entries []LedgerEntry
	q := db.NewSelect().
		Model(&entries).
		Where("ale.team_id = ?", key.TeamID).
		Where("ale.season_id = ?", key.SeasonID).
		Where("ale.currency_track = ?", key.Track).
		Order("ale.id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("auctiondb.ListLedgerEntries: %w", mapError(err))
	}
	return entries, nil
}

// SumLedger returns the sum of a team's ledger amounts.
func (r *Impl) SumLedger(ctx context.Context, db bun.IDB, key auctiondomain.BudgetKey) (int64, error) {
	db = r.resolveDB(db)
	var sum int64
	err := db.NewSelect().
		Model((*LedgerEntry)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0)").
		Where("team_id = ?", key.TeamID).
		Where("season_id = ?", key.SeasonID).
		Where("currency_track = ?", key.Track).
		Scan(ctx, &sum)
	if err != nil {
		return 0, fmt.Errorf("auctiondb.SumLedger: %w", mapError(err))
	}
	return sum, nil
}

// LatestLedgerEntry returns a team's most recent entry.
func (r *Impl) LatestLedgerEntry(ctx context.Context, db bun.IDB, key auctiondomain.BudgetKey) (*LedgerEntry, error) {
	db = r.resolveDB(db)
	entry := new(LedgerEntry)
	err := db.NewSelect().
		Model(entry).
		Where("ale.team_id = ?", key.TeamID).
		Where("ale.season_id = ?", key.SeasonID).
		Where("ale.currency_track = ?", key.Track).
		Order("ale.id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("auctiondb.LatestLedgerEntry: %w", mapError(err))
	}
	return entry, nil
}
