package testutils

import (
	"context"
	"fmt"
	"log"

	auctionmigrations "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/repositories/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// RunMigrations applies the River job tables and the auction schema.
func RunMigrations(ctx context.Context, db *bun.DB, dsn string) error {
	if err := runRiverMigrations(ctx, dsn); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}

	migrator := migrate.NewMigrator(db, auctionmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run auction migrations: %w", err)
	}
	log.Printf("Ran auction migrations group #%d", group.ID)
	return nil
}

func runRiverMigrations(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return err
	}
	return nil
}

// CleanupDatabase truncates the auction tables between tests.
func CleanupDatabase(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, `TRUNCATE auction_ledger_entries, auction_bids, auction_round_players,
		auction_round_eligible_teams, auction_settlements, auction_team_budgets, auction_rounds, river_job CASCADE`)
	return err
}
