package auctiondb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// InsertBid stores a bid unless one already exists for the same
// (round, player, team). It reports whether a row was inserted.
func (r *Impl) InsertBid(ctx context.Context, db bun.IDB, bid *Bid) (bool, error) {
	db = r.resolveDB(db)
	if bid.PlacedAt.IsZero() {
		bid.PlacedAt = time.Now().UTC()
	}
	res, err := db.NewInsert().
		Model(bid).
		On("CONFLICT (round_id, player_id, team_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("auctiondb.InsertBid: %w", mapError(err))
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("auctiondb.InsertBid: rows affected: %w", err)
	}
	return rows > 0, nil
}

// UpdateBidAmount replaces a sealed tiebreaker amount.
func (r *Impl) UpdateBidAmount(ctx context.Context, db bun.IDB, bid *Bid) error {
	db = r.resolveDB(db)
	bid.PlacedAt = time.Now().UTC()
	res, err := db.NewUpdate().
		Model(bid).
		Column("amount", "placed_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("auctiondb.UpdateBidAmount: %w", mapError(err))
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetBid reads a single bid.
func (r *Impl) GetBid(ctx context.Context, db bun.IDB, roundID uuid.UUID, playerID, teamID string) (*Bid, error) {
	db = r.resolveDB(db)
	bid := new(Bid)
	err := db.NewSelect().
		Model(bid).
		Where("ab.round_id = ?", roundID).
		Where("ab.player_id = ?", playerID).
		Where("ab.team_id = ?", teamID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("auctiondb.GetBid: %w", mapError(err))
	}
	return bid, nil
}

// DeleteBid removes a bid and reports whether a row existed.
func (r *Impl) DeleteBid(ctx context.Context, db bun.IDB, roundID uuid.UUID, playerID, teamID string) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*Bid)(nil)).
		Where("round_id = ?", roundID).
		Where("player_id = ?", playerID).
		Where("team_id = ?", teamID).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("auctiondb.DeleteBid: %w", mapError(err))
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("auctiondb.DeleteBid: rows affected: %w", err)
	}
	return rows > 0, nil
}

// CountPlayerBids returns the number of teams bidding on a player.
func (r *Impl) CountPlayerBids(ctx context.Context, db bun.IDB, roundID uuid.UUID, playerID string) (int, error) {
	db = r.resolveDB(db)
	count, err := db.NewSelect().
		Model((*Bid)(nil)).
		Where("round_id = ?", roundID).
		Where("player_id = ?", playerID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("auctiondb.CountPlayerBids: %w", mapError(err))
	}
	return count, nil
}

// CountBidsByPlayer returns live bid counts keyed by player ID.
func (r *Impl) CountBidsByPlayer(ctx context.Context, db bun.IDB, roundID uuid.UUID) (map[string]int, error) {
	db = r.resolveDB(db)
	var rows []struct {
		PlayerID string `bun:"player_id"`
		Count    int    `bun:"count"`
	}
	err := db.NewSelect().
		Model((*Bid)(nil)).
		Column("player_id").
		ColumnExpr("COUNT(*) AS count").
		Where("round_id = ?", roundID).
		Group("player_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("auctiondb.CountBidsByPlayer: %w", mapError(err))
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.PlayerID] = row.Count
	}
	return counts, nil
}

// TeamHoldings returns the number of outstanding bids a team holds in a round
// and the sum of their amounts.
func (r *Impl) TeamHoldings(ctx context.Context, db bun.IDB, roundID uuid.UUID, teamID string) (int, int64, error) {
	db = r.resolveDB(db)
	var out struct {
		Count int   `bun:"count"`
		Total int64 `bun:"total"`
	}
	err := db.NewSelect().
		Model((*Bid)(nil)).
		ColumnExpr("COUNT(*) AS count").
		ColumnExpr("COALESCE(SUM(amount), 0) AS total").
		Where("round_id = ?", roundID).
		Where("team_id = ?", teamID).
		Scan(ctx, &out)
	if err != nil {
		return 0, 0, fmt.Errorf("auctiondb.TeamHoldings: %w", mapError(err))
	}
	return out.Count, out.Total, nil
}

// ListBids returns every bid in a round ordered by player then placement time.
func (r *Impl) ListBids(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]Bid, error) {
	db = r.resolveDB(db)
	var bids []Bid
	err := db.NewSelect().
		Model(&bids).
		Where("ab.round_id = ?", roundID).
		OrderExpr("ab.player_id ASC, ab.placed_at ASC, ab.team_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("auctiondb.ListBids: %w", mapError(err))
	}
	return bids, nil
}

// ListTeamBids returns one team's bids in a round.
func (r *Impl) ListTeamBids(ctx context.Context, db bun.IDB, roundID uuid.UUID, teamID string) ([]Bid, error) {
	db = r.resolveDB(db)
	var bids []Bid
	err := db.NewSelect().
		Model(&bids).
		Where("ab.round_id = ?", roundID).
		Where("ab.team_id = ?", teamID).
		Order("ab.placed_at").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("auctiondb.ListTeamBids: %w", mapError(err))
	}
	return bids, nil
}
