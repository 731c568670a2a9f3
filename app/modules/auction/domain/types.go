package auctiondomain

import "fmt"

// RoundKind distinguishes regular bulk rounds from tiebreaker sub-rounds.
type RoundKind string

const (
	RoundKindNormal     RoundKind = "normal"
	RoundKindTiebreaker RoundKind = "tiebreaker"
)

// RoundStatus is the lifecycle state of a round.
type RoundStatus string

const (
	RoundStatusDraft     RoundStatus = "draft"
	RoundStatusScheduled RoundStatus = "scheduled"
	RoundStatusActive    RoundStatus = "active"
	RoundStatusCompleted RoundStatus = "completed"
	RoundStatusCancelled RoundStatus = "cancelled"
)

// IsValid reports whether s is a known status.
func (s RoundStatus) IsValid() bool {
	switch s {
	case RoundStatusDraft, RoundStatusScheduled, RoundStatusActive, RoundStatusCompleted, RoundStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s RoundStatus) IsTerminal() bool {
	return s == RoundStatusCompleted || s == RoundStatusCancelled
}

// CanTransitionTo enforces draft→scheduled→active→{completed,cancelled}
// with cancel allowed only before activation.
func (s RoundStatus) CanTransitionTo(next RoundStatus) bool {
	switch next {
	case RoundStatusScheduled:
		return s == RoundStatusDraft
	case RoundStatusActive:
		return s == RoundStatusDraft || s == RoundStatusScheduled
	case RoundStatusCompleted:
		return s == RoundStatusActive
	case RoundStatusCancelled:
		return s == RoundStatusDraft || s == RoundStatusScheduled
	}
	return false
}

// CanForceComplete reports whether an administrative override may complete
// a round that never went active.
func (s RoundStatus) CanForceComplete() bool {
	return s == RoundStatusDraft || s == RoundStatusScheduled || s == RoundStatusActive
}

// PlayerStatus is the per-round status of a player in the pool.
type PlayerStatus string

const (
	PlayerStatusPending   PlayerStatus = "pending"
	PlayerStatusSold      PlayerStatus = "sold"
	PlayerStatusUnsold    PlayerStatus = "unsold"
	PlayerStatusContested PlayerStatus = "contested"
)

// SettlementMode selects how team balances are established before a batch.
type SettlementMode string

const (
	// SettlementIncremental applies the batch on top of the stored budget row.
	SettlementIncremental SettlementMode = "incremental"
	// SettlementRecompute rebuilds the budget row from the ledger and sold
	// players before applying the batch.
	SettlementRecompute SettlementMode = "recompute"
)

// ParseSettlementMode maps an empty value to incremental.
func ParseSettlementMode(v string) (SettlementMode, error) {
	switch SettlementMode(v) {
	case "", SettlementIncremental:
		return SettlementIncremental, nil
	case SettlementRecompute:
		return SettlementRecompute, nil
	}
	return "", fmt.Errorf("unknown settlement mode %q", v)
}

// Ledger entry reasons.
const (
	ReasonAuctionAward    = "auction_award"
	ReasonTiebreakerAward = "tiebreaker_award"
	ReasonAdjustment      = "adjustment"
)

// Unsold reasons recorded when settlement isolates a failed award.
const (
	UnsoldNoBids             = "no_bids"
	UnsoldInsufficientBudget = "insufficient_budget"
	UnsoldRosterFull         = "roster_full"
	UnsoldNoBudget           = "no_budget"
	UnsoldAlreadySold        = "already_sold"
)

// BudgetKey identifies one team's budget track within a season.
type BudgetKey struct {
	TeamID   string `json:"team_id"`
	SeasonID string `json:"season_id"`
	Track    string `json:"currency_track"`
}

func (k BudgetKey) String() string {
	return k.TeamID + "/" + k.SeasonID + "/" + k.Track
}

// RosterAssignment is a settled player delivered to the season model.
type RosterAssignment struct {
	RoundID    string `json:"round_id"`
	SeasonID   string `json:"season_id"`
	Track      string `json:"currency_track"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	TeamID     string `json:"team_id"`
	Amount     int64  `json:"amount"`
}
