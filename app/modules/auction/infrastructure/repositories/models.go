package auctiondb

import (
	"time"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Round is a bidding window over a set of players.
type Round struct {
	bun.BaseModel `bun:"table:auction_rounds,alias:ar"`

	ID                 uuid.UUID                 `bun:"id,pk,type:uuid" json:"id"`
	SeasonID           string                    `bun:"season_id,notnull" json:"season_id"`
	RoundNumber        int                       `bun:"round_number,notnull" json:"round_number"`
	Kind               auctiondomain.RoundKind   `bun:"kind,notnull" json:"kind"`
	Status             auctiondomain.RoundStatus `bun:"status,notnull" json:"status"`
	BasePrice          int64                     `bun:"base_price,notnull" json:"base_price"`
	CurrencyTrack      string                    `bun:"currency_track,notnull" json:"currency_track"`
	DurationSeconds    int64                     `bun:"duration_seconds,notnull" json:"duration_seconds"`
	ScheduledAt        *time.Time                `bun:"scheduled_at" json:"scheduled_at,omitempty"`
	StartTime          *time.Time                `bun:"start_time" json:"start_time,omitempty"`
	EndTime            *time.Time                `bun:"end_time" json:"end_time,omitempty"`
	ParentRoundID      *uuid.UUID                `bun:"parent_round_id,type:uuid" json:"parent_round_id,omitempty"`
	TiebreakerPlayerID *string                   `bun:"tiebreaker_player_id" json:"tiebreaker_player_id,omitempty"`
	CreatedAt          time.Time                 `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt          time.Time                 `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// Duration returns the configured bidding window.
func (r *Round) Duration() time.Duration {
	return time.Duration(r.DurationSeconds) * time.Second
}

// IsTiebreaker reports whether r resolves a single contested player.
func (r *Round) IsTiebreaker() bool {
	return r.Kind == auctiondomain.RoundKindTiebreaker
}

// RoundPlayer is a player offered in a round.
type RoundPlayer struct {
	bun.BaseModel `bun:"table:auction_round_players,alias:arp"`

	RoundID           uuid.UUID                  `bun:"round_id,pk,type:uuid" json:"round_id"`
	PlayerID          string                     `bun:"player_id,pk" json:"player_id"`
	PlayerName        string                     `bun:"player_name,notnull" json:"player_name"`
	Position          string                     `bun:"position" json:"position,omitempty"`
	Status            auctiondomain.PlayerStatus `bun:"status,notnull" json:"status"`
	WinningTeamID     *string                    `bun:"winning_team_id" json:"winning_team_id,omitempty"`
	WinningBid        *int64                     `bun:"winning_bid" json:"winning_bid,omitempty"`
	UnsoldReason      *string                    `bun:"unsold_reason" json:"unsold_reason,omitempty"`
	TiebreakerRoundID *uuid.UUID                 `bun:"tiebreaker_round_id,type:uuid" json:"tiebreaker_round_id,omitempty"`
	UpdatedAt         time.Time                  `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// EligibleTeam restricts bidding in a tiebreaker round.
type EligibleTeam struct {
	bun.BaseModel `bun:"table:auction_round_eligible_teams,alias:aet"`

	RoundID uuid.UUID `bun:"round_id,pk,type:uuid"`
	TeamID  string    `bun:"team_id,pk"`
}

// Bid is one team's hold on one player in one round.
type Bid struct {
	bun.BaseModel `bun:"table:auction_bids,alias:ab"`

	RoundID  uuid.UUID `bun:"round_id,pk,type:uuid" json:"round_id"`
	PlayerID string    `bun:"player_id,pk" json:"player_id"`
	TeamID   string    `bun:"team_id,pk" json:"team_id"`
	Amount   int64     `bun:"amount,notnull" json:"amount"`
	PlacedAt time.Time `bun:"placed_at,notnull,default:current_timestamp" json:"placed_at"`
}

// TeamBudget is a team's balance and roster usage on one currency track.
type TeamBudget struct {
	bun.BaseModel `bun:"table:auction_team_budgets,alias:atb"`

	TeamID          string    `bun:"team_id,pk" json:"team_id"`
	SeasonID        string    `bun:"season_id,pk" json:"season_id"`
	CurrencyTrack   string    `bun:"currency_track,pk" json:"currency_track"`
	StartingBalance int64     `bun:"starting_balance,notnull" json:"starting_balance"`
	AvailableBudget int64     `bun:"available_budget,notnull" json:"available_budget"`
	TotalSpent      int64     `bun:"total_spent,notnull" json:"total_spent"`
	RosterSlotsUsed int       `bun:"roster_slots_used,notnull" json:"roster_slots_used"`
	RosterSlotsMax  int       `bun:"roster_slots_max,notnull" json:"roster_slots_max"`
	UpdatedAt       time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// Key returns the budget's identity.
func (b *TeamBudget) Key() auctiondomain.BudgetKey {
	return auctiondomain.BudgetKey{TeamID: b.TeamID, SeasonID: b.SeasonID, Track: b.CurrencyTrack}
}

// State converts the row for the settlement planner.
func (b *TeamBudget) State() auctiondomain.BudgetState {
	return auctiondomain.BudgetState{
		Key:             b.Key(),
		StartingBalance: b.StartingBalance,
		Available:       b.AvailableBudget,
		TotalSpent:      b.TotalSpent,
		SlotsUsed:       b.RosterSlotsUsed,
		SlotsMax:        b.RosterSlotsMax,
	}
}

// Apply copies planner output back onto the row.
func (b *TeamBudget) Apply(s auctiondomain.BudgetState) {
	b.AvailableBudget = s.Available
	b.TotalSpent = s.TotalSpent
	b.RosterSlotsUsed = s.SlotsUsed
}

// LedgerEntry is an append-only balance movement.
type LedgerEntry struct {
	bun.BaseModel `bun:"table:auction_ledger_entries,alias:ale"`

	ID            int64          `bun:"id,pk,autoincrement" json:"id"`
	TeamID        string         `bun:"team_id,notnull" json:"team_id"`
	SeasonID      string         `bun:"season_id,notnull" json:"season_id"`
	CurrencyTrack string         `bun:"currency_track,notnull" json:"currency_track"`
	Amount        int64          `bun:"amount,notnull" json:"amount"`
	BalanceAfter  int64          `bun:"balance_after,notnull" json:"balance_after"`
	Reason        string         `bun:"reason,notnull" json:"reason"`
	RoundID       *uuid.UUID     `bun:"round_id,type:uuid" json:"round_id,omitempty"`
	PlayerID      *string        `bun:"player_id" json:"player_id,omitempty"`
	PlayerName    *string        `bun:"player_name" json:"player_name,omitempty"`
	Metadata      map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time      `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// Settlement records that a round's batch was applied.
type Settlement struct {
	bun.BaseModel `bun:"table:auction_settlements,alias:ast"`

	RoundID            uuid.UUID                    `bun:"round_id,pk,type:uuid" json:"round_id"`
	ProcessingHash     string                       `bun:"processing_hash,notnull" json:"processing_hash"`
	Mode               auctiondomain.SettlementMode `bun:"mode,notnull" json:"mode"`
	SoldCount          int                          `bun:"sold_count,notnull" json:"sold_count"`
	UnsoldCount        int                          `bun:"unsold_count,notnull" json:"unsold_count"`
	ContestedCount     int                          `bun:"contested_count,notnull" json:"contested_count"`
	TiebreakersCreated int                          `bun:"tiebreakers_created,notnull" json:"tiebreakers_created"`
	SettledAt          time.Time                    `bun:"settled_at,notnull,default:current_timestamp" json:"settled_at"`
}
