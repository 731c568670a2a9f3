package auctionmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating auction tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS auction_rounds (
					id UUID PRIMARY KEY,
					season_id TEXT NOT NULL,
					round_number INTEGER NOT NULL,
					kind TEXT NOT NULL CHECK (kind IN ('normal', 'tiebreaker')),
					status TEXT NOT NULL CHECK (status IN ('draft', 'scheduled', 'active', 'completed', 'cancelled')),
					base_price BIGINT NOT NULL CHECK (base_price >= 0),
					currency_track TEXT NOT NULL,
					duration_seconds BIGINT NOT NULL CHECK (duration_seconds > 0),
					scheduled_at TIMESTAMPTZ,
					start_time TIMESTAMPTZ,
					end_time TIMESTAMPTZ,
					parent_round_id UUID REFERENCES auction_rounds(id),
					tiebreaker_player_id TEXT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CHECK (status NOT IN ('active', 'completed') OR start_time IS NOT NULL),
					CHECK (status <> 'completed' OR end_time IS NOT NULL),
					UNIQUE (parent_round_id, tiebreaker_player_id)
				);
				CREATE INDEX IF NOT EXISTS idx_auction_rounds_season_status ON auction_rounds(season_id, status);
			`); err != nil {
				return fmt.Errorf("failed to create auction_rounds table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS auction_round_players (
					round_id UUID NOT NULL REFERENCES auction_rounds(id),
					player_id TEXT NOT NULL,
					player_name TEXT NOT NULL,
					position TEXT,
					status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'sold', 'unsold', 'contested')),
					winning_team_id TEXT,
					winning_bid BIGINT,
					unsold_reason TEXT,
					tiebreaker_round_id UUID REFERENCES auction_rounds(id),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (round_id, player_id),
					CHECK (status <> 'sold' OR (winning_team_id IS NOT NULL AND winning_bid IS NOT NULL))
				);
				CREATE INDEX IF NOT EXISTS idx_auction_round_players_player ON auction_round_players(player_id, status);
				CREATE INDEX IF NOT EXISTS idx_auction_round_players_winner ON auction_round_players(winning_team_id) WHERE status = 'sold';
			`); err != nil {
				return fmt.Errorf("failed to create auction_round_players table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS auction_round_eligible_teams (
					round_id UUID NOT NULL REFERENCES auction_rounds(id),
					team_id TEXT NOT NULL,
					PRIMARY KEY (round_id, team_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create auction_round_eligible_teams table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS auction_bids (
					round_id UUID NOT NULL,
					player_id TEXT NOT NULL,
					team_id TEXT NOT NULL,
					amount BIGINT NOT NULL CHECK (amount >= 0),
					placed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (round_id, player_id, team_id),
					FOREIGN KEY (round_id, player_id) REFERENCES auction_round_players(round_id, player_id)
				);
				CREATE INDEX IF NOT EXISTS idx_auction_bids_team ON auction_bids(round_id, team_id);
			`); err != nil {
				return fmt.Errorf("failed to create auction_bids table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS auction_team_budgets (
					team_id TEXT NOT NULL,
					season_id TEXT NOT NULL,
					currency_track TEXT NOT NULL,
					starting_balance BIGINT NOT NULL,
					available_budget BIGINT NOT NULL,
					total_spent BIGINT NOT NULL DEFAULT 0,
					roster_slots_used INTEGER NOT NULL DEFAULT 0,
					roster_slots_max INTEGER NOT NULL,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (team_id, season_id, currency_track),
					CHECK (roster_slots_used <= roster_slots_max)
				);
			`); err != nil {
				return fmt.Errorf("failed to create auction_team_budgets table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS auction_ledger_entries (
					id BIGSERIAL PRIMARY KEY,
					team_id TEXT NOT NULL,
					season_id TEXT NOT NULL,
					currency_track TEXT NOT NULL,
					amount BIGINT NOT NULL,
					balance_after BIGINT NOT NULL,
					reason TEXT NOT NULL,
					round_id UUID REFERENCES auction_rounds(id),
					player_id TEXT,
					player_name TEXT,
					metadata JSONB,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_auction_ledger_latest
					ON auction_ledger_entries(team_id, season_id, currency_track, id DESC);
			`); err != nil {
				return fmt.Errorf("failed to create auction_ledger_entries table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS auction_settlements (
					round_id UUID PRIMARY KEY REFERENCES auction_rounds(id),
					processing_hash TEXT NOT NULL,
					mode TEXT NOT NULL,
					sold_count INTEGER NOT NULL DEFAULT 0,
					unsold_count INTEGER NOT NULL DEFAULT 0,
					contested_count INTEGER NOT NULL DEFAULT 0,
					tiebreakers_created INTEGER NOT NULL DEFAULT 0,
					settled_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create auction_settlements table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping auction tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP TABLE IF EXISTS auction_settlements;
				DROP TABLE IF EXISTS auction_ledger_entries;
				DROP TABLE IF EXISTS auction_team_budgets;
				DROP TABLE IF EXISTS auction_bids;
				DROP TABLE IF EXISTS auction_round_eligible_teams;
				DROP TABLE IF EXISTS auction_round_players;
				DROP TABLE IF EXISTS auction_rounds;
			`); err != nil {
				return fmt.Errorf("failed to drop auction tables: %w", err)
			}
			return nil
		})
	})
}
