// Package season adapts the season/contract model: budget defaults for new
// team tracks and delivery of settled roster assignments.
package season

import (
	"context"

	auctionservice "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/application"
	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
)

// StaticDirectory hands every team track the same configured defaults.
type StaticDirectory struct {
	defaults auctionservice.BudgetDefaults
}

var _ auctionservice.SeasonDirectory = (*StaticDirectory)(nil)

// NewStaticDirectory creates a StaticDirectory.
func NewStaticDirectory(startingBalance int64, rosterSlotsMax int) *StaticDirectory {
	return &StaticDirectory{defaults: auctionservice.BudgetDefaults{
		StartingBalance: startingBalance,
		RosterSlotsMax:  rosterSlotsMax,
	}}
}

func (d *StaticDirectory) BudgetDefaults(context.Context, auctiondomain.BudgetKey) (auctionservice.BudgetDefaults, error) {
	return d.defaults, nil
}
