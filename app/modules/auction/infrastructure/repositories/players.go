package auctiondb

import (
	"context"
	"fmt"
	"time"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UpsertRoundPlayers attaches players to a round, refreshing name and
// position for players already attached.
func (r *Impl) UpsertRoundPlayers(ctx context.Context, db bun.IDB, players []RoundPlayer) error {
	if len(players) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	now := time.Now().UTC()
	for i := range players {
		players[i].UpdatedAt = now
		if players[i].Status == "" {
			players[i].Status = auctiondomain.PlayerStatusPending
		}
	}
	_, err := db.NewInsert().
		Model(&players).
		On("CONFLICT (round_id, player_id) DO UPDATE").
		Set("player_name = EXCLUDED.player_name").
		Set("position = EXCLUDED.position").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("auctiondb.UpsertRoundPlayers: %w", mapError(err))
	}
	return nil
}

// ListRoundPlayers returns a round's players ordered by player ID.
func (r *Impl) ListRoundPlayers(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]RoundPlayer, error) {
	db = r.resolveDB(db)
	var players []RoundPlayer
	err := db.NewSelect().
		Model(&players).
		Where("arp.round_id = ?", roundID).
		Order("arp.player_id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("auctiondb.ListRoundPlayers: %w", mapError(err))
	}
	return players, nil
}

// GetRoundPlayer reads one player of a round.
func (r *Impl) GetRoundPlayer(ctx context.Context, db bun.IDB, roundID uuid.UUID, playerID string) (*RoundPlayer, error) {
	db = r.resolveDB(db)
	p := new(RoundPlayer)
	err := db.NewSelect().
		Model(p).
		Where("arp.round_id = ?", roundID).
		Where("arp.player_id = ?", playerID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("auctiondb.GetRoundPlayer: %w", mapError(err))
	}
	return p, nil
}

// UpdateRoundPlayer persists a player's settlement fields.
func (r *Impl) UpdateRoundPlayer(ctx context.Context, db bun.IDB, player *RoundPlayer) error {
	db = r.resolveDB(db)
	player.UpdatedAt = time.Now().UTC()
	_, err := db.NewUpdate().
		Model(player).
		Column("status", "winning_team_id", "winning_bid", "unsold_reason", "tiebreaker_round_id", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("auctiondb.UpdateRoundPlayer: %w", mapError(err))
	}
	return nil
}

// IsPlayerSold reports whether the player was sold in any round of the season
// on the given currency track.
func (r *Impl) IsPlayerSold(ctx context.Context, db bun.IDB, seasonID, track, playerID string) (bool, error) {
	db = r.resolveDB(db)
	exists, err := db.NewSelect().
		Model((*RoundPlayer)(nil)).
		Join("JOIN auction_rounds AS ar ON ar.id = arp.round_id").
		Where("ar.season_id = ?", seasonID).
		Where("ar.currency_track = ?", track).
		Where("arp.player_id = ?", playerID).
		Where("arp.status = ?", auctiondomain.PlayerStatusSold).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("auctiondb.IsPlayerSold: %w", mapError(err))
	}
	return exists, nil
}

// CountOwnedPlayers counts distinct players sold to a team in a season. A
// player resolved through tiebreakers is counted once.
func (r *Impl) CountOwnedPlayers(ctx context.Context, db bun.IDB, seasonID, track, teamID string) (int, error) {
	db = r.resolveDB(db)
	var count int
	err := db.NewSelect().
		Model((*RoundPlayer)(nil)).
		ColumnExpr("COUNT(DISTINCT arp.player_id)").
		Join("JOIN auction_rounds AS ar ON ar.id = arp.round_id").
		Where("ar.season_id = ?", seasonID).
		Where("ar.currency_track = ?", track).
		Where("arp.winning_team_id = ?", teamID).
		Where("arp.status = ?", auctiondomain.PlayerStatusSold).
		Scan(ctx, &count)
	if err != nil {
		return 0, fmt.Errorf("auctiondb.CountOwnedPlayers: %w", mapError(err))
	}
	return count, nil
}
