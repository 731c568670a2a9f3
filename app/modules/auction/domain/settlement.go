package auctiondomain

// BudgetState is a team's budget as seen by the settlement planner.
type BudgetState struct {
	Key             BudgetKey `json:"key"`
	StartingBalance int64     `json:"starting_balance"`
	Available       int64     `json:"available_budget"`
	TotalSpent      int64     `json:"total_spent"`
	SlotsUsed       int       `json:"roster_slots_used"`
	SlotsMax        int       `json:"roster_slots_max"`
}

// SlotHeadroom returns the number of roster slots still free.
func (b BudgetState) SlotHeadroom() int {
	if h := b.SlotsMax - b.SlotsUsed; h > 0 {
		return h
	}
	return 0
}

// Award is an uncontested (or tiebreaker-won) player ready to settle.
type Award struct {
	PlayerID   string
	PlayerName string
	TeamID     string
	Amount     int64
}

// PlannedEntry is a ledger entry computed by the planner.
type PlannedEntry struct {
	Key          BudgetKey `json:"key"`
	PlayerID     string    `json:"player_id"`
	PlayerName   string    `json:"player_name"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balance_after"`
}

// PlayerOutcome is the final status the planner assigns to a player.
type PlayerOutcome struct {
	PlayerID      string       `json:"player_id"`
	Status        PlayerStatus `json:"status"`
	WinningTeamID string       `json:"winning_team_id,omitempty"`
	WinningBid    int64        `json:"winning_bid,omitempty"`
	Reason        string       `json:"reason,omitempty"`
}

// SettlementPlan is the complete set of mutations for one batch.
type SettlementPlan struct {
	Outcomes []PlayerOutcome
	Entries  []PlannedEntry
	Budgets  map[string]BudgetState
}

// SoldCount returns the number of awards that settled.
func (p SettlementPlan) SoldCount() int {
	n := 0
	for _, o := range p.Outcomes {
		if o.Status == PlayerStatusSold {
			n++
		}
	}
	return n
}

// PlanSettlement applies awards in order against budgets keyed by team ID.
// Each team's balance is carried forward in memory across the batch, so
// entries for one team chain their balance_after values without re-reading
// storage. An award the team can no longer afford, or has no slot for, becomes
// unsold and the batch continues.
func PlanSettlement(awards []Award, budgets map[string]BudgetState) SettlementPlan {
	running := make(map[string]BudgetState, len(budgets))
	for team, b := range budgets {
		running[team] = b
	}

	plan := SettlementPlan{
		Outcomes: make([]PlayerOutcome, 0, len(awards)),
	}

	for _, a := range awards {
		b, ok := running[a.TeamID]
		switch {
		case !ok:
			plan.Outcomes = append(plan.Outcomes, unsold(a.PlayerID, UnsoldNoBudget))
			continue
		case b.Available < a.Amount:
			plan.Outcomes = append(plan.Outcomes, unsold(a.PlayerID, UnsoldInsufficientBudget))
			continue
		case b.SlotHeadroom() == 0:
			plan.Outcomes = append(plan.Outcomes, unsold(a.PlayerID, UnsoldRosterFull))
			continue
		}

		b.Available -= a.Amount
		b.TotalSpent += a.Amount
		b.SlotsUsed++
		running[a.TeamID] = b

		plan.Entries = append(plan.Entries, PlannedEntry{
			Key:          b.Key,
			PlayerID:     a.PlayerID,
			PlayerName:   a.PlayerName,
			Amount:       -a.Amount,
			BalanceAfter: b.Available,
		})
		plan.Outcomes = append(plan.Outcomes, PlayerOutcome{
			PlayerID:      a.PlayerID,
			Status:        PlayerStatusSold,
			WinningTeamID: a.TeamID,
			WinningBid:    a.Amount,
		})
	}

	plan.Budgets = running
	return plan
}

func unsold(playerID, reason string) PlayerOutcome {
	return PlayerOutcome{PlayerID: playerID, Status: PlayerStatusUnsold, Reason: reason}
}

// RecomputeBudget rebuilds a budget from its ledger sum and the number of
// players the team currently owns in the season.
func RecomputeBudget(b BudgetState, ledgerSum int64, ownedPlayers int) BudgetState {
	b.Available = b.StartingBalance + ledgerSum
	b.TotalSpent = -ledgerSum
	b.SlotsUsed = ownedPlayers
	return b
}
