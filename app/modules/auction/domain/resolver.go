package auctiondomain

import (
	"sort"
	"time"
)

// BidInput is one team's bid on a player at close time.
type BidInput struct {
	TeamID   string
	Amount   int64
	PlacedAt time.Time
}

// PlayerBids groups the bids on one player.
type PlayerBids struct {
	PlayerID   string
	PlayerName string
	Bids       []BidInput
}

// Outcome is the resolver's routing decision for a player.
type Outcome string

const (
	OutcomeUnsold    Outcome = "unsold"
	OutcomeAward     Outcome = "award"
	OutcomeContested Outcome = "contested"
)

// Resolution is the routing decision for a single player.
type Resolution struct {
	PlayerID   string
	PlayerName string
	Outcome    Outcome
	Winner     *BidInput
	Tied       []BidInput
	// Reason is set for unsold outcomes.
	Reason string
}

// TiedTeamIDs returns the tied teams in a stable order.
func (r Resolution) TiedTeamIDs() []string {
	ids := make([]string, 0, len(r.Tied))
	for _, b := range r.Tied {
		ids = append(ids, b.TeamID)
	}
	sort.Strings(ids)
	return ids
}

// MarkSold turns the resolution into an unsold outcome because the player was
// bought in another round.
func (r *Resolution) MarkSold() {
	r.Outcome = OutcomeUnsold
	r.Reason = UnsoldAlreadySold
	r.Winner = nil
	r.Tied = nil
}

// Resolve partitions players by their bids. The highest amount wins; when two
// or more bids share the highest amount the player is contested. In a bulk
// round every bid carries the base price, so any second bidder contests.
func Resolve(players []PlayerBids) []Resolution {
	out := make([]Resolution, 0, len(players))
	for _, p := range players {
		res := Resolution{PlayerID: p.PlayerID, PlayerName: p.PlayerName}
		if len(p.Bids) == 0 {
			res.Outcome = OutcomeUnsold
			res.Reason = UnsoldNoBids
			out = append(out, res)
			continue
		}

		var top int64
		for _, b := range p.Bids {
			if b.Amount > top {
				top = b.Amount
			}
		}
		var leaders []BidInput
		for _, b := range p.Bids {
			if b.Amount == top {
				leaders = append(leaders, b)
			}
		}

		if len(leaders) == 1 {
			winner := leaders[0]
			res.Outcome = OutcomeAward
			res.Winner = &winner
		} else {
			sort.Slice(leaders, func(i, j int) bool { return leaders[i].TeamID < leaders[j].TeamID })
			res.Outcome = OutcomeContested
			res.Tied = leaders
		}
		out = append(out, res)
	}
	return out
}
