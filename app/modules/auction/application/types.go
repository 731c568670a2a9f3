package auctionservice

import (
	"time"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	auctiondb "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/repositories"
	"github.com/google/uuid"
)

// PlayerInput attaches a player to a round.
type PlayerInput struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Position   string `json:"position,omitempty"`
}

// CreateRoundRequest creates a draft round.
type CreateRoundRequest struct {
	SeasonID        string        `json:"season_id"`
	RoundNumber     int           `json:"round_number"`
	BasePrice       int64         `json:"base_price"`
	DurationSeconds int64         `json:"duration_seconds"`
	CurrencyTrack   string        `json:"currency_track,omitempty"`
	Players         []PlayerInput `json:"players,omitempty"`
}

// ScheduleRequest plans a round's activation. StartAt is RFC3339 or natural
// language interpreted in Timezone.
type ScheduleRequest struct {
	StartAt  string `json:"start_at"`
	Timezone string `json:"timezone,omitempty"`
}

// CompleteRequest closes a round. Force completes a round that never went
// active. An empty Mode uses the configured default.
type CompleteRequest struct {
	Force bool                         `json:"force"`
	Mode  auctiondomain.SettlementMode `json:"mode,omitempty"`
}

// PlaceBidRequest places one bid. Amount is only used in tiebreaker rounds;
// bulk rounds always bid the base price.
type PlaceBidRequest struct {
	RoundID  uuid.UUID `json:"round_id"`
	PlayerID string    `json:"player_id"`
	TeamID   string    `json:"team_id"`
	Amount   int64     `json:"amount,omitempty"`
}

// PlaceBidsRequest places bids on several players at once.
type PlaceBidsRequest struct {
	RoundID   uuid.UUID `json:"round_id"`
	TeamID    string    `json:"team_id"`
	PlayerIDs []string  `json:"player_ids"`
}

// CreateTiebreakerRequest opens a tiebreaker for a contested player.
type CreateTiebreakerRequest struct {
	RoundID   uuid.UUID `json:"round_id"`
	PlayerID  string    `json:"player_id"`
	BasePrice *int64    `json:"base_price,omitempty"`
}

// AdjustBudgetRequest appends a compensating ledger entry.
type AdjustBudgetRequest struct {
	Key    auctiondomain.BudgetKey `json:"key"`
	Amount int64                   `json:"amount"`
	Note   string                  `json:"note"`
}

// PlayerView is a round player with its live bid count.
type PlayerView struct {
	auctiondb.RoundPlayer
	BidCount int `json:"bid_count"`
}

// RoundView is the authoritative snapshot clients re-fetch.
type RoundView struct {
	Round         *auctiondb.Round `json:"round"`
	Players       []PlayerView     `json:"players"`
	EligibleTeams []string         `json:"eligible_teams,omitempty"`
}

// BidResult reports a single placement.
type BidResult struct {
	Bid      *auctiondb.Bid `json:"bid"`
	BidCount int            `json:"bid_count"`
	Created  bool           `json:"created"`
}

// BulkBidResult reports a multi-player placement.
type BulkBidResult struct {
	Placed  []string `json:"placed"`
	Skipped []string `json:"skipped,omitempty"`
}

// WithdrawResult reports a withdrawal.
type WithdrawResult struct {
	Removed  bool `json:"removed"`
	BidCount int  `json:"bid_count"`
}

// TeamBidView is one of a team's bids with the player's status.
type TeamBidView struct {
	auctiondb.Bid
	PlayerName   string                     `json:"player_name"`
	PlayerStatus auctiondomain.PlayerStatus `json:"player_status"`
}

// TiebreakerRef identifies a tiebreaker spawned for a contested player.
type TiebreakerRef struct {
	PlayerID string    `json:"player_id"`
	RoundID  uuid.UUID `json:"round_id"`
	TeamIDs  []string  `json:"team_ids"`
	Created  bool      `json:"created"`
}

// TiebreakerFailure reports a tiebreaker that could not be created. The
// player stays contested and can be retried with CreateTiebreaker.
type TiebreakerFailure struct {
	PlayerID string `json:"player_id"`
	Error    string `json:"error"`
}

// CompletionResult summarizes a settlement pass.
type CompletionResult struct {
	Round              *auctiondb.Round                 `json:"round"`
	Mode               auctiondomain.SettlementMode     `json:"mode"`
	AlreadyCompleted   bool                             `json:"already_completed"`
	Outcomes           []auctiondomain.PlayerOutcome    `json:"outcomes"`
	Tiebreakers        []TiebreakerRef                  `json:"tiebreakers,omitempty"`
	TiebreakerFailures []TiebreakerFailure              `json:"tiebreaker_failures,omitempty"`
	Entries            []auctiondomain.PlannedEntry     `json:"ledger_entries,omitempty"`
	Budgets            []auctiondomain.BudgetState      `json:"budgets,omitempty"`
	Assignments        []auctiondomain.RosterAssignment `json:"assignments,omitempty"`
	SettlementHash     string                           `json:"settlement_hash,omitempty"`
	SettledAt          time.Time                        `json:"settled_at"`
}

// BudgetView is a team's budget with its latest ledger balance.
type BudgetView struct {
	Budget        *auctiondb.TeamBudget `json:"budget"`
	LatestBalance *int64                `json:"latest_balance,omitempty"`
}
