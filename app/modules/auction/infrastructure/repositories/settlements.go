package auctiondb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// GetSettlement reads the settlement record for a round.
func (r *Impl) GetSettlement(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*Settlement, error) {
	db = r.resolveDB(db)
	s := new(Settlement)
	if err := db.NewSelect().Model(s).Where("ast.round_id = ?", roundID).Scan(ctx); err != nil {
		return nil, fmt.Errorf("auctiondb.GetSettlement: %w", mapError(err))
	}
	return s, nil
}

// UpsertSettlement records the batch applied for a round.
func (r *Impl) UpsertSettlement(ctx context.Context, db bun.IDB, settlement *Settlement) error {
	db = r.resolveDB(db)
	if settlement.SettledAt.IsZero() {
		settlement.SettledAt = time.Now().UTC()
	}
	_, err := db.NewInsert().
		Model(settlement).
		On("CONFLICT (round_id) DO UPDATE").
		Set("processing_hash = EXCLUDED.processing_hash").
		Set("mode = EXCLUDED.mode").
		Set("sold_count = EXCLUDED.sold_count").
		Set("unsold_count = EXCLUDED.unsold_count").
		Set("contested_count = EXCLUDED.contested_count").
		Set("tiebreakers_created = EXCLUDED.tiebreakers_created").
		Set("settled_at = EXCLUDED.settled_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("auctiondb.UpsertSettlement: %w", mapError(err))
	}
	return nil
}
