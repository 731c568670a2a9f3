package auctionmigrations

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations holds the auction schema migrations.
var Migrations = migrate.NewMigrations()

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
