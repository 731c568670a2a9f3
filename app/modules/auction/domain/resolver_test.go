package auctiondomain

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name        string
		players     []PlayerBids
		wantOutcome []Outcome
		wantWinner  []string
		wantTied    [][]string
	}{
		{
			name: "sold, contested and unsold routing",
			players: []PlayerBids{
				{PlayerID: "p1", Bids: []BidInput{{TeamID: "X", Amount: 10, PlacedAt: now}}},
				{PlayerID: "p2", Bids: []BidInput{{TeamID: "Y", Amount: 10}, {TeamID: "X", Amount: 10}}},
				{PlayerID: "p3"},
			},
			wantOutcome: []Outcome{OutcomeAward, OutcomeContested, OutcomeUnsold},
			wantWinner:  []string{"X", "", ""},
			wantTied:    [][]string{nil, {"X", "Y"}, nil},
		},
		{
			name: "highest sealed amount wins",
			players: []PlayerBids{
				{PlayerID: "p1", Bids: []BidInput{{TeamID: "X", Amount: 12}, {TeamID: "Y", Amount: 15}}},
			},
			wantOutcome: []Outcome{OutcomeAward},
			wantWinner:  []string{"Y"},
			wantTied:    [][]string{nil},
		},
		{
			name: "tie at the top only includes leaders",
			players: []PlayerBids{
				{PlayerID: "p1", Bids: []BidInput{{TeamID: "Z", Amount: 20}, {TeamID: "X", Amount: 11}, {TeamID: "Y", Amount: 20}}},
			},
			wantOutcome: []Outcome{OutcomeContested},
			wantWinner:  []string{""},
			wantTied:    [][]string{{"Y", "Z"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.players)
			require.Len(t, got, len(tt.players))
			for i, res := range got {
				assert.Equal(t, tt.wantOutcome[i], res.Outcome, "player %s", res.PlayerID)
				if tt.wantWinner[i] != "" {
					require.NotNil(t, res.Winner)
					assert.Equal(t, tt.wantWinner[i], res.Winner.TeamID)
				} else {
					assert.Nil(t, res.Winner)
				}
				if tt.wantTied[i] != nil {
					assert.Equal(t, tt.wantTied[i], res.TiedTeamIDs())
				}
			}
		})
	}
}

func TestResolve_ContestedIffTwoOrMoreBidders(t *testing.T) {
	faker := gofakeit.New(42)
	teams := []string{"t1", "t2", "t3", "t4"}

	players := make([]PlayerBids, 0, 50)
	for i := 0; i < 50; i++ {
		p := PlayerBids{PlayerID: faker.UUID(), PlayerName: faker.Name()}
		for _, team := range teams {
			if faker.Bool() {
				p.Bids = append(p.Bids, BidInput{TeamID: team, Amount: 10})
			}
		}
		players = append(players, p)
	}

	for i, res := range Resolve(players) {
		switch n := len(players[i].Bids); {
		case n == 0:
			assert.Equal(t, OutcomeUnsold, res.Outcome)
			assert.Equal(t, UnsoldNoBids, res.Reason)
		case n == 1:
			assert.Equal(t, OutcomeAward, res.Outcome)
		default:
			assert.Equal(t, OutcomeContested, res.Outcome)
			assert.Len(t, res.Tied, n)
		}
	}
}

func TestResolution_MarkSold(t *testing.T) {
	res := Resolve([]PlayerBids{{PlayerID: "p1", Bids: []BidInput{{TeamID: "A", Amount: 10}, {TeamID: "B", Amount: 10}}}})[0]
	require.Equal(t, OutcomeContested, res.Outcome)

	res.MarkSold()

	assert.Equal(t, OutcomeUnsold, res.Outcome)
	assert.Equal(t, UnsoldAlreadySold, res.Reason)
	assert.Nil(t, res.Winner)
	assert.Empty(t, res.TiedTeamIDs())
}
