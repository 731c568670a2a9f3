package auctiondomain

import "time"

// EventKind names a realtime round event.
type EventKind string

const (
	EventRoundUpdated        EventKind = "round_updated"
	EventBidAdded            EventKind = "bid_added"
	EventBidRemoved          EventKind = "bid_removed"
	EventPlayerStatusUpdated EventKind = "player_status_updated"
)

// Event is the advisory payload published on a round's channel. Clients that
// miss events rebuild state by re-fetching the round.
type Event struct {
	Kind          EventKind    `json:"kind"`
	RoundID       string       `json:"round_id"`
	Status        RoundStatus  `json:"status,omitempty"`
	StartTime     *time.Time   `json:"start_time,omitempty"`
	EndTime       *time.Time   `json:"end_time,omitempty"`
	PlayerID      string       `json:"player_id,omitempty"`
	TeamID        string       `json:"team_id,omitempty"`
	BidCount      *int         `json:"bid_count,omitempty"`
	PlayerStatus  PlayerStatus `json:"player_status,omitempty"`
	WinningTeamID string       `json:"winning_team_id,omitempty"`
	WinningBid    *int64       `json:"winning_bid,omitempty"`
	OccurredAt    time.Time    `json:"occurred_at"`
}

// RoundUpdated reports a status or timing change.
func RoundUpdated(roundID string, status RoundStatus, start, end *time.Time, at time.Time) Event {
	return Event{Kind: EventRoundUpdated, RoundID: roundID, Status: status, StartTime: start, EndTime: end, OccurredAt: at}
}

// BidAdded reports the new bid count for a player.
func BidAdded(roundID, playerID, teamID string, count int, at time.Time) Event {
	return Event{Kind: EventBidAdded, RoundID: roundID, PlayerID: playerID, TeamID: teamID, BidCount: &count, OccurredAt: at}
}

// BidRemoved reports the new bid count after a withdrawal.
func BidRemoved(roundID, playerID, teamID string, count int, at time.Time) Event {
	return Event{Kind: EventBidRemoved, RoundID: roundID, PlayerID: playerID, TeamID: teamID, BidCount: &count, OccurredAt: at}
}

// PlayerStatusUpdated reports a settlement or routing outcome.
func PlayerStatusUpdated(roundID string, o PlayerOutcome, at time.Time) Event {
	ev := Event{
		Kind:          EventPlayerStatusUpdated,
		RoundID:       roundID,
		PlayerID:      o.PlayerID,
		PlayerStatus:  o.Status,
		WinningTeamID: o.WinningTeamID,
		OccurredAt:    at,
	}
	if o.Status == PlayerStatusSold {
		bid := o.WinningBid
		ev.WinningBid = &bid
	}
	return ev
}
